package codec

// InventoryItems is the owned-stock projection, pushed on login and
// whenever a host-proxied Host.SetInventory relay succeeds.
type InventoryItems struct {
	ItemIDs []uint32
}

func (p InventoryItems) Encode() []byte {
	e := NewEncoder()
	e.WriteArray(len(p.ItemIDs), func(i int) {
		e.WriteU32(p.ItemIDs[i])
	})
	return e.Bytes()
}

// FavoriteCosmeticsPush is the outbound form of a cosmetics projection,
// sent on login. A Favorite.SetCosmetics write-through sends no reply.
type FavoriteCosmeticsPush struct {
	Cosmetics CosmeticSlots
}

func (p FavoriteCosmeticsPush) Encode() []byte {
	e := NewEncoder().WriteU8(byte(FavoriteActionSetCosmetics))
	encodeCosmeticSlots(e, p.Cosmetics)
	return e.Bytes()
}

// Loadout is one named weapon-slot preset.
type Loadout struct {
	Name        string
	WeaponSlots []uint32
}

// FavoriteLoadoutsPush is the outbound form of the full loadout list,
// sent on login and inside a Host.SetLoadout relay. A Favorite.SetLoadout
// write-through sends no reply.
type FavoriteLoadoutsPush struct {
	Loadouts []Loadout
}

func (p FavoriteLoadoutsPush) Encode() []byte {
	e := NewEncoder().WriteU8(byte(FavoriteActionSetLoadout))
	e.WriteArray(len(p.Loadouts), func(i int) {
		l := p.Loadouts[i]
		e.WriteString(l.Name)
		e.WriteArray(len(l.WeaponSlots), func(j int) {
			e.WriteU32(l.WeaponSlots[j])
		})
	})
	return e.Bytes()
}

// OptionBuyMenuPush is the outbound form of the buy-menu projection, sent
// on login and inside a Host.SetBuyMenu relay. An Option.SetBuyMenu
// write-through sends no reply.
type OptionBuyMenuPush struct {
	Slots []uint32
}

func (p OptionBuyMenuPush) Encode() []byte {
	e := NewEncoder().WriteU8(byte(OptionActionSetBuyMenu))
	e.WriteArray(len(p.Slots), func(i int) {
		e.WriteU32(p.Slots[i])
	})
	return e.Bytes()
}
