// Package services holds the canonical template policy. Every function here is
// pure: decisions depend only on the arguments, never on I/O or hidden state.
package services

import (
	"cmp"
	"encoding/json"
	"slices"
	"strconv"

	"github.com/caelus-deploy/caelus/services/admin/domain/models"
)

// Pointer is a product's canonical template pointer: Unset or Set(id).
// The zero value is Unset.
type Pointer struct {
	id  int64
	set bool
}

// Unset returns the pointer that names no template.
func Unset() Pointer { return Pointer{} }

// SetTo returns the pointer naming template id.
func SetTo(id int64) Pointer { return Pointer{id: id, set: true} }

// PointerOf converts a nullable template id as carried on the wire.
func PointerOf(id *int64) Pointer {
	if id == nil {
		return Unset()
	}
	return SetTo(*id)
}

// ID returns the template id and whether the pointer is set.
func (p Pointer) ID() (int64, bool) { return p.id, p.set }

// IsSet reports whether the pointer names a template.
func (p Pointer) IsSet() bool { return p.set }

// Is reports whether the pointer is Set(id).
func (p Pointer) Is(id int64) bool { return p.set && p.id == id }

// Ptr converts the pointer back to its nullable wire form.
func (p Pointer) Ptr() *int64 {
	if !p.set {
		return nil
	}
	id := p.id
	return &id
}

// MarshalJSON encodes the pointer as the template id or null.
func (p Pointer) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Ptr())
}

func (p Pointer) String() string {
	if !p.set {
		return "unset"
	}
	return "set(" + strconv.FormatInt(p.id, 10) + ")"
}

// Reason explains a Decision.
type Reason string

const (
	// ReasonPromoted: the product had no canonical template and the new one takes it.
	ReasonPromoted Reason = "promoted"
	// ReasonKept: the product already had a canonical template.
	ReasonKept Reason = "kept"
	// ReasonNotCanonical: the deleted template was not canonical.
	ReasonNotCanonical Reason = "not_canonical"
	// ReasonReplaced: the canonical template was deleted and the newest remaining one takes over.
	ReasonReplaced Reason = "replaced"
	// ReasonCleared: the canonical template was deleted and none remain.
	ReasonCleared Reason = "cleared"
	// ReasonExplicit: an operator chose the template.
	ReasonExplicit Reason = "explicit"
)

// Decision is the outcome of applying the policy to one trigger.
type Decision struct {
	// Next is the pointer the product should end up with.
	Next Pointer `json:"next"`
	// Changed is true when Next differs from the prior pointer.
	Changed bool   `json:"changed"`
	Reason  Reason `json:"reason"`
}

// Write returns the template id the caller must write to the product, if any.
// Clearing the pointer never needs a write: deleting the canonical template
// already cleared it at the gateway.
func (d Decision) Write() (int64, bool) {
	if !d.Changed {
		return 0, false
	}
	return d.Next.ID()
}

// AfterCreate decides the pointer after created was added to a product whose
// pointer was prior. Only an Unset pointer is affected.
func AfterCreate(prior Pointer, created models.Template) Decision {
	if prior.IsSet() {
		return Decision{Next: prior, Reason: ReasonKept}
	}
	return Decision{Next: SetTo(created.ID), Changed: true, Reason: ReasonPromoted}
}

// AfterDelete decides the pointer after template deletedID was removed from a
// product whose pointer was prior. remaining is the product's template list as
// observed after the deletion; it is only consulted when the deleted template
// was canonical. An entry for deletedID in remaining is ignored.
func AfterDelete(prior Pointer, deletedID int64, remaining []models.Template) Decision {
	if !prior.Is(deletedID) {
		return Decision{Next: prior, Reason: ReasonNotCanonical}
	}

	candidates := make([]models.Template, 0, len(remaining))
	for _, t := range remaining {
		if t.ID != deletedID {
			candidates = append(candidates, t)
		}
	}
	if newest, ok := Newest(candidates); ok {
		return Decision{Next: SetTo(newest.ID), Changed: true, Reason: ReasonReplaced}
	}
	return Decision{Next: Unset(), Changed: true, Reason: ReasonCleared}
}

// Explicit is the decision for an operator choosing templateID. It is written
// unconditionally; the last writer wins.
func Explicit(templateID int64) Decision {
	return Decision{Next: SetTo(templateID), Changed: true, Reason: ReasonExplicit}
}

// Newest returns the first template in canonical order, or false for an empty slice.
func Newest(templates []models.Template) (models.Template, bool) {
	if len(templates) == 0 {
		return models.Template{}, false
	}
	return slices.MinFunc(templates, compareNewestFirst), true
}

// SortNewestFirst returns a copy of templates in canonical order: created_at
// descending, ties broken by id descending. The input is not modified.
func SortNewestFirst(templates []models.Template) []models.Template {
	out := slices.Clone(templates)
	slices.SortFunc(out, compareNewestFirst)
	return out
}

func compareNewestFirst(a, b models.Template) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}
