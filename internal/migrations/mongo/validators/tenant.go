package validators

import "go.mongodb.org/mongo-driver/bson"

var TenantValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"last_name",
			"full_name",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"last_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"full_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},

			"age": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  150,
			},

			"contact_no": bson.M{
				"bsonType": "string",
				"pattern":  `^(\+[1-9]\d{1,14})?$`,
			},

			"address": bson.M{
				"bsonType":  "string",
				"maxLength": 300,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
