package model

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04"
	DateTimeLayout = DateLayout + " " + ClockLayout
)

type ClassSession struct {
	ID          string    `json:"id" bson:"_id"`
	CourseID    string    `json:"course_id" bson:"course_id" validate:"required"`
	Date        string    `json:"date" bson:"date" validate:"required,isodate"`
	Time        string    `json:"time" bson:"time" validate:"required,clock"`
	Location    string    `json:"location" bson:"location" validate:"required"`
	Price       float64   `json:"price" bson:"price" validate:"gte=0"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// StartsAt combines Date and Time. ok is false when either is unparsable.
func (c *ClassSession) StartsAt() (t time.Time, ok bool) {
	t, err := time.Parse(DateTimeLayout, c.Date+" "+c.Time)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SortClassSessions orders sessions by start time. Sessions whose date or
// time cannot be parsed go last; ties are broken by id.
func SortClassSessions(classes []*ClassSession) {
	slices.SortFunc(classes, func(a, b *ClassSession) int {
		at, aok := a.StartsAt()
		bt, bok := b.StartsAt()
		switch {
		case aok && !bok:
			return -1
		case !aok && bok:
			return 1
		case aok && bok:
			if c := at.Compare(bt); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

type ClassInput struct {
	Date        string  `json:"date" validate:"required,isodate"`
	Time        string  `json:"time" validate:"required,clock"`
	Location    string  `json:"location" validate:"required,min=3,max=200"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description,omitempty" validate:"max=500"`
}

// ClassSessionUpdate is a partial update. Nil fields are left untouched.
type ClassSessionUpdate struct {
	Date        *string  `json:"date,omitempty" validate:"omitnil,isodate"`
	Time        *string  `json:"time,omitempty" validate:"omitnil,clock"`
	Location    *string  `json:"location,omitempty" validate:"omitnil,min=3,max=200"`
	Price       *float64 `json:"price,omitempty" validate:"omitnil,gte=0"`
	Description *string  `json:"description,omitempty" validate:"omitnil,max=500"`
}

func (u *ClassSessionUpdate) IsEmpty() bool {
	return u == nil || (u.Date == nil && u.Time == nil && u.Location == nil && u.Price == nil && u.Description == nil)
}

// UnmarshalJSON accepts the price as a JSON number or a numeric string.
func (in *ClassInput) UnmarshalJSON(data []byte) error {
	type plain ClassInput
	aux := struct {
		*plain
		Price json.RawMessage `json:"price"`
	}{plain: (*plain)(in)}
	if err := decodeStrict(data, &aux); err != nil {
		return err
	}
	price, err := parsePrice(aux.Price)
	if err != nil {
		return err
	}
	if price != nil {
		in.Price = *price
	}
	return nil
}

// UnmarshalJSON accepts the price as a JSON number or a numeric string.
// A null price is treated as absent.
func (u *ClassSessionUpdate) UnmarshalJSON(data []byte) error {
	type plain ClassSessionUpdate
	aux := struct {
		*plain
		Price json.RawMessage `json:"price"`
	}{plain: (*plain)(u)}
	if err := decodeStrict(data, &aux); err != nil {
		return err
	}
	price, err := parsePrice(aux.Price)
	if err != nil {
		return err
	}
	u.Price = price
	return nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// parsePrice returns nil for an absent or null price.
func parsePrice(raw json.RawMessage) (*float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var f float64
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("price: %w", err)
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return nil, fmt.Errorf("price %q is not a number", s)
		}
		f = parsed
	} else if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("price must be a number: %w", err)
	}
	return &f, nil
}
