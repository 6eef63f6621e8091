package services

import (
	"brightlend/internal/models"
	"brightlend/internal/registry"
)

// Broadcaster is the single sanctioned path from "a detail-level action
// changed a field" to "the registry collections reflect it". It only issues
// targeted patches; it never triggers a reload, so whatever navigation
// context currently holds the record stays valid.
type Broadcaster struct {
	registries *registry.Manager
}

func NewBroadcaster(registries *registry.Manager) *Broadcaster {
	return &Broadcaster{registries: registries}
}

// Propagate patches every live session registry. Sessions whose scope never
// contained the key no-op inside Patch.
func (b *Broadcaster) Propagate(key models.LeadKey, patch models.LeadPatch) {
	b.registries.ForEach(func(r *registry.Registry) {
		r.Patch(key, patch)
	})
}
