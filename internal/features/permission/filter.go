package permission

import (
	"encoding/json"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
)

// DecisionKey is the fiber.Ctx locals key the permission middleware stores
// the computed Decision under.
const DecisionKey = "permission_decision"

// DecisionFrom returns the decision attached by the permission middleware.
// Handlers use it for scope filtering and field restriction.
func DecisionFrom(c *fiber.Ctx) Decision {
	if d, ok := c.Locals(DecisionKey).(Decision); ok {
		return d
	}
	return Decision{}
}

// ScopeFilter translates a decision's data scope into the Mongo filter a
// feature repository applies. The resolver only hands back the scope; query
// restriction is the caller's job.
func (d Decision) ScopeFilter() bson.M {
	switch d.Scope {
	case ScopeSelf:
		return bson.M{"created_by": d.UserID}
	case ScopeDepartment:
		return bson.M{"department": d.Department}
	default:
		return bson.M{}
	}
}

// StripRestrictedFields renders a record with the decision's restricted view
// fields removed. Removes exactly the listed fields and no others.
func (d Decision) StripRestrictedFields(record interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for field := range d.RestrictedFields {
		delete(doc, field)
	}
	return doc, nil
}

// StripRestrictedFieldsAll applies StripRestrictedFields to a slice.
func (d Decision) StripRestrictedFieldsAll(records interface{}) ([]map[string]interface{}, error) {
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	var docs []map[string]interface{}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		for field := range d.RestrictedFields {
			delete(doc, field)
		}
	}
	return docs, nil
}

// RejectRestrictedWrites fails a write that touches any edit-restricted field.
func (d Decision) RejectRestrictedWrites(module ModuleKey, action ActionKey, updates map[string]interface{}) error {
	for field := range updates {
		if _, restricted := d.RestrictedFields[field]; restricted {
			return apperr.FieldDenied(string(module), string(action), field)
		}
	}
	return nil
}
