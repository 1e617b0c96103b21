package validators

import "go.mongodb.org/mongo-driver/bson"

var CourseValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "name", "description", "duration", "created_at"},
		"properties": bson.M{
			"_id":         bson.M{"bsonType": "string", "minLength": 1},
			"name":        bson.M{"bsonType": "string", "minLength": 1},
			"description": bson.M{"bsonType": "string", "minLength": 1},
			"duration":    bson.M{"bsonType": "string", "minLength": 1},
			"created_at":  bson.M{"bsonType": "date"},
		},
	},
}

// ClassValidator mirrors the date and time formats the catalog validator
// accepts, so rows written by other tools still sort and parse.
var ClassValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "course_id", "date", "time", "location", "price", "created_at"},
		"properties": bson.M{
			"_id":       bson.M{"bsonType": "string", "minLength": 1},
			"course_id": bson.M{"bsonType": "string", "minLength": 1},
			"date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},
			"time": bson.M{
				"bsonType": "string",
				"pattern":  `^([01]\d|2[0-3]):[0-5]\d$`,
			},
			"location": bson.M{"bsonType": "string", "minLength": 1},
			"price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},
			"description": bson.M{"bsonType": "string"},
			"created_at":  bson.M{"bsonType": "date"},
		},
	},
}
