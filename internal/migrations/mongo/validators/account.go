package validators

import "go.mongodb.org/mongo-driver/bson"

var AccountValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"username",
			"password_hash",
			"role",
			"created_at",
		},
		"additionalProperties": false,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"username": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 30,
			},

			"password_hash": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"role": bson.M{
				"enum": []string{"member", "organiser"},
			},

			"email": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
