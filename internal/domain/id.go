package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a fresh ObjectID in hex form. Every backend uses it so
// identifiers look the same whichever engine is configured.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ParseID reports whether id is a well-formed identifier. Hex digits are
// accepted in either case; callers key records by the returned oid.Hex().
func ParseID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}
