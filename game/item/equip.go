package item

import (
	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
)

// slotOf returns a pointer to the equipment field for an item type, or nil
// when the type has no slot.
func slotOf(e *model.Equipment, t resource.ItemType) *string {
	switch t {
	case resource.ItemWeapon:
		return &e.Weapon
	case resource.ItemArmor:
		return &e.Armor
	case resource.ItemAccessory:
		return &e.Accessory
	}
	return nil
}

// Equip puts an owned item into its slot, replacing whatever was there.
// The item must be in the inventory and wearable by the character's class.
func Equip(s *model.Snapshot, cat *resource.Catalog, itemID string) (*model.Snapshot, error) {
	it, ok := cat.Item(itemID)
	if !ok {
		return nil, rule.Errorf(rule.ReasonNotFound, "unknown item %q", itemID)
	}
	if !it.Equippable() {
		return nil, rule.Errorf(rule.ReasonPrerequisiteNotMet, "item %s cannot be equipped", itemID)
	}
	if s.Inventory[itemID] < 1 {
		return nil, rule.Errorf(rule.ReasonInsufficientResource, "item %s not in inventory", itemID)
	}
	if !it.AllowsClass(resource.ClassID(s.Class)) {
		return nil, rule.Errorf(rule.ReasonPrerequisiteNotMet, "class %s cannot equip %s", s.Class, itemID)
	}

	out := s.Clone()
	*slotOf(&out.Equipment, it.Type) = itemID
	return out, nil
}

// Unequip empties a slot. Emptying an empty slot is a no-op.
func Unequip(s *model.Snapshot, slot resource.ItemType) (*model.Snapshot, error) {
	out := s.Clone()
	p := slotOf(&out.Equipment, slot)
	if p == nil {
		return nil, rule.Errorf(rule.ReasonNotFound, "unknown equipment slot %q", slot)
	}
	*p = ""
	return out, nil
}
