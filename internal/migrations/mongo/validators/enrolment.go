package validators

import "go.mongodb.org/mongo-driver/bson"

var EnrolmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "course_id", "class_id", "name", "email", "phone", "created_at"},
		"properties": bson.M{
			"_id":       bson.M{"bsonType": "string", "minLength": 1},
			"course_id": bson.M{"bsonType": "string", "minLength": 1},
			"class_id":  bson.M{"bsonType": "string", "minLength": 1},
			"name":      bson.M{"bsonType": "string", "minLength": 1},
			"email": bson.M{
				"bsonType": "string",
				"pattern":  `^[^@\s]+@[^@\s]+$`,
			},
			"phone": bson.M{
				"bsonType": "string",
				"pattern":  `^[\d\s\-\+\(\)]+$`,
			},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
