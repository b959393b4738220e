package permission

import (
	"testing"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
)

func TestScopeFilter(t *testing.T) {
	tests := []struct {
		name     string
		decision Decision
		wantKey  string
		wantVal  string
		empty    bool
	}{
		{
			name:     "self keys on creator",
			decision: Decision{Allowed: true, Scope: ScopeSelf, UserID: "u1"},
			wantKey:  "created_by", wantVal: "u1",
		},
		{
			name:     "department keys on department",
			decision: Decision{Allowed: true, Scope: ScopeDepartment, UserID: "u1", Department: "Field"},
			wantKey:  "department", wantVal: "Field",
		},
		{
			name:     "all adds no constraint",
			decision: Decision{Allowed: true, Scope: ScopeAll, UserID: "u1"},
			empty:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := tt.decision.ScopeFilter()
			if tt.empty {
				if len(filter) != 0 {
					t.Errorf("filter = %v, want empty", filter)
				}
				return
			}
			if len(filter) != 1 || filter[tt.wantKey] != tt.wantVal {
				t.Errorf("filter = %v, want {%s: %s}", filter, tt.wantKey, tt.wantVal)
			}
		})
	}
}

func TestStripRestrictedFields(t *testing.T) {
	type record struct {
		Name     string  `json:"name"`
		Customer string  `json:"customer"`
		Total    float64 `json:"total"`
	}

	d := Decision{
		Allowed:          true,
		RestrictedFields: map[string]struct{}{"customer": {}},
	}

	doc, err := d.StripRestrictedFields(record{Name: "Site A", Customer: "Acme", Total: 1200})
	if err != nil {
		t.Fatalf("StripRestrictedFields error: %v", err)
	}

	if _, present := doc["customer"]; present {
		t.Error("restricted field survived stripping")
	}
	if doc["name"] != "Site A" {
		t.Errorf("name = %v, unrestricted field must be untouched", doc["name"])
	}
	if doc["total"] != float64(1200) {
		t.Errorf("total = %v, unrestricted field must be untouched", doc["total"])
	}
}

func TestStripRestrictedFieldsAll(t *testing.T) {
	type record struct {
		Name     string `json:"name"`
		Customer string `json:"customer"`
	}

	d := Decision{
		Allowed:          true,
		RestrictedFields: map[string]struct{}{"customer": {}},
	}

	docs, err := d.StripRestrictedFieldsAll([]record{
		{Name: "a", Customer: "x"},
		{Name: "b", Customer: "y"},
	})
	if err != nil {
		t.Fatalf("StripRestrictedFieldsAll error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len = %d, want 2", len(docs))
	}
	for i, doc := range docs {
		if _, present := doc["customer"]; present {
			t.Errorf("doc %d: restricted field survived stripping", i)
		}
	}
}

func TestRejectRestrictedWrites(t *testing.T) {
	d := Decision{
		Allowed:          true,
		RestrictedFields: map[string]struct{}{"manual_original_contract": {}},
	}

	if err := d.RejectRestrictedWrites(ModuleFinancials, ActionUpdate, map[string]interface{}{
		"status": "active",
	}); err != nil {
		t.Errorf("clean write rejected: %v", err)
	}

	err := d.RejectRestrictedWrites(ModuleFinancials, ActionUpdate, map[string]interface{}{
		"status":                   "active",
		"manual_original_contract": 5000.0,
	})
	if err == nil {
		t.Fatal("write touching a restricted field was accepted")
	}
	if !apperr.Is(err, apperr.KindPermissionDenied) {
		t.Errorf("kind = %v, want permission denied", apperr.KindOf(err))
	}
}
