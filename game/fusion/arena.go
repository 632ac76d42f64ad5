package fusion

import (
	"fmt"
	"slices"
	"time"

	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
)

// add appends a new instance to the arena of s, which must already be a
// private copy. Ids come from a per-snapshot sequence so replays produce the
// same ids.
func add(s *model.Snapshot, partnerID string, stage int, at time.Time) model.PartnerInstance {
	s.NextPartnerSeq++
	p := model.PartnerInstance{
		ID:         fmt.Sprintf("p-%d", s.NextPartnerSeq),
		PartnerID:  partnerID,
		Stage:      stage,
		AcquiredAt: at,
	}
	s.Partners = append(s.Partners, p)
	return p
}

// Acquire returns a copy of s owning one more instance of partnerID.
func Acquire(s *model.Snapshot, cat *resource.Catalog, partnerID string, at time.Time) (*model.Snapshot, model.PartnerInstance, error) {
	if _, ok := cat.Partner(partnerID); !ok {
		return nil, model.PartnerInstance{}, rule.Errorf(rule.ReasonNotFound, "unknown partner %q", partnerID)
	}
	out := s.Clone()
	p := add(out, partnerID, 0, at)
	return out, p, nil
}

// owned is a resolved ingredient: the arena entry and its template.
type owned struct {
	inst model.PartnerInstance
	def  *resource.PartnerDef
}

// collect resolves instance ids against the current arena. Unknown and
// repeated ids fail with IngredientNotOwned.
func collect(s *model.Snapshot, cat *resource.Catalog, ids []string) ([]owned, error) {
	out := make([]owned, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, rule.Errorf(rule.ReasonIngredientNotOwned, "instance %s listed twice", id)
		}
		seen[id] = true
		i := s.PartnerIndex(id)
		if i < 0 {
			return nil, rule.Errorf(rule.ReasonIngredientNotOwned, "instance %s not owned", id)
		}
		inst := s.Partners[i]
		def, ok := cat.Partner(inst.PartnerID)
		if !ok {
			return nil, rule.Errorf(rule.ReasonNotFound, "instance %s has unknown partner %q", id, inst.PartnerID)
		}
		out = append(out, owned{inst: inst, def: def})
	}
	return out, nil
}

func remove(s *model.Snapshot, ids []string) {
	s.Partners = slices.DeleteFunc(s.Partners, func(p model.PartnerInstance) bool {
		return slices.Contains(ids, p.ID)
	})
}
