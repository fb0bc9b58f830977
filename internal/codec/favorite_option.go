package codec

// CosmeticSlots is the fixed eight-slot cosmetic loadout: counter-
// terrorist skin, terrorist skin, head, gloves, backpack, footsteps,
// player card, and spray.
type CosmeticSlots struct {
	CT    uint32
	Ter   uint32
	Head  uint32
	Glove uint32
	Back  uint32
	Steps uint32
	Card  uint32
	Spray uint32
}

func encodeCosmeticSlots(e *Encoder, c CosmeticSlots) {
	e.WriteU32(c.CT).WriteU32(c.Ter).WriteU32(c.Head).WriteU32(c.Glove).
		WriteU32(c.Back).WriteU32(c.Steps).WriteU32(c.Card).WriteU32(c.Spray)
}

func decodeCosmeticSlots(d *Decoder) CosmeticSlots {
	return CosmeticSlots{
		CT:    d.ReadU32("ct"),
		Ter:   d.ReadU32("ter"),
		Head:  d.ReadU32("head"),
		Glove: d.ReadU32("glove"),
		Back:  d.ReadU32("back"),
		Steps: d.ReadU32("steps"),
		Card:  d.ReadU32("card"),
		Spray: d.ReadU32("spray"),
	}
}

// DecodeFavoriteAction peeks the sub-opcode of an inbound Favorite packet.
func DecodeFavoriteAction(d *Decoder) FavoriteAction {
	return FavoriteAction(d.ReadU8("favorite_action"))
}

// FavoriteSetLoadoutRequest is a write-through: the server validates it
// against the caller's own session and forwards it to the inventory
// service, it never touches room state.
type FavoriteSetLoadoutRequest struct {
	LoadoutName string
	WeaponSlots []uint32
}

func DecodeFavoriteSetLoadoutRequest(d *Decoder) FavoriteSetLoadoutRequest {
	req := FavoriteSetLoadoutRequest{LoadoutName: d.ReadString("loadout_name")}
	d.ReadArray("weapon_slots", func(i int) {
		req.WeaponSlots = append(req.WeaponSlots, d.ReadU32("weapon_slot"))
	})
	return req
}

type FavoriteSetCosmeticsRequest struct {
	Cosmetics CosmeticSlots
}

func DecodeFavoriteSetCosmeticsRequest(d *Decoder) FavoriteSetCosmeticsRequest {
	return FavoriteSetCosmeticsRequest{Cosmetics: decodeCosmeticSlots(d)}
}

// DecodeOptionAction peeks the sub-opcode of an inbound Option packet.
func DecodeOptionAction(d *Decoder) OptionAction {
	return OptionAction(d.ReadU8("option_action"))
}

type OptionSetBuyMenuRequest struct {
	Slots []uint32
}

func DecodeOptionSetBuyMenuRequest(d *Decoder) OptionSetBuyMenuRequest {
	req := OptionSetBuyMenuRequest{}
	d.ReadArray("slots", func(i int) {
		req.Slots = append(req.Slots, d.ReadU32("slot"))
	})
	return req
}
