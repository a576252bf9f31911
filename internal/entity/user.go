package entity

import (
	"mediaetl/internal/normalize"
	"mediaetl/pkg/records"
)

// userSpec upserts on email: source exports repeat users across files and
// email is the stable identity. external_user_id is unique too and is
// prechecked by the writer.
var userSpec = Spec{
	Name:   "users",
	Table:  "users",
	Key:    "email",
	Unique: []string{"external_user_id"},
	Columns: []string{
		"external_user_id", "email", "first_name", "last_name", "age",
		"gender", "country", "state_province", "city", "subscription_plan",
		"subscription_start_date", "is_active", "monthly_spend",
		"primary_device", "household_size", "source_created_at",
	},
}

var userMapping = []FieldMapping{
	{Target: "external_user_id", Sources: []string{"user_id"}},
	{Target: "email", Sources: []string{"email"}},
	{Target: "first_name", Sources: []string{"first_name"}},
	{Target: "last_name", Sources: []string{"last_name"}},
	{Target: "age", Sources: []string{"age"}},
	{Target: "gender", Sources: []string{"gender"}},
	{Target: "country", Sources: []string{"country"}},
	{Target: "state_province", Sources: []string{"state_province"}},
	{Target: "city", Sources: []string{"city"}},
	{Target: "subscription_plan", Sources: []string{"subscription_plan"}},
	{Target: "subscription_start_date", Sources: []string{"subscription_start_date"}},
	{Target: "is_active", Sources: []string{"is_active"}},
	{Target: "monthly_spend", Sources: []string{"monthly_spend"}},
	{Target: "primary_device", Sources: []string{"primary_device"}},
	{Target: "household_size", Sources: []string{"household_size"}},
	{Target: "source_created_at", Sources: []string{"created_at"}},
}

// User transforms and validates subscriber records.
type User struct {
	errAccum
}

// NewUser returns a transformer for the "users" entity type.
func NewUser() *User { return &User{} }

func (u *User) Spec() Spec { return userSpec }

func (u *User) Transform(raw records.Record) records.Record {
	u.reset()
	rec := make(records.Record, len(userMapping))
	for _, m := range userMapping {
		rec[m.Target] = u.transformValue(m.Target, sourceValue(raw, m.Sources))
	}
	return rec
}

func (u *User) transformValue(field, value string) any {
	if value == "" {
		if field == "is_active" {
			return false
		}
		return nil
	}
	switch field {
	case "age", "household_size":
		return normalize.Integer(value)
	case "gender":
		return normalize.Gender.Normalize(value)
	case "monthly_spend":
		return normalize.Currency(value)
	case "subscription_start_date", "source_created_at":
		d, err := normalize.ParseDate(value)
		if err != nil {
			u.add("%v", err)
			return nil
		}
		return d
	case "is_active":
		return normalize.Boolean(value)
	case "subscription_plan":
		return normalize.SubscriptionPlan.Normalize(value)
	case "primary_device":
		return normalize.Device.Normalize(value)
	case "email":
		return normalize.Lower(value)
	case "first_name", "last_name", "city", "state_province", "country":
		return normalize.TitleCase(value)
	default:
		return normalize.Trim(value)
	}
}

var userRequired = []string{
	"external_user_id", "email", "first_name", "last_name",
	"country", "city", "subscription_plan",
}

var genderValues = normalize.Gender.Values()

func (u *User) Validate(rec records.Record) bool {
	u.requireFields(rec, userRequired)
	u.numericRange(rec, "age", 0, 150, "Age")
	u.nonNegative(rec, "household_size", "Household size")

	if !rec.Empty("gender") {
		if _, ok := genderValues[rec.String("gender")]; !ok {
			u.add("Gender must be Male, Female, Prefer not to say, Other, or empty")
		}
	}
	if !rec.Empty("monthly_spend") {
		if _, ok := rec.Float("monthly_spend"); !ok {
			u.add("Monthly spend must be numeric")
		}
	}
	if email := rec.String("email"); email != "" && !validEmail(email) {
		u.add("Email must be a valid email address")
	}

	return len(u.errs) == 0
}
