package codec

// DecodeHostAction peeks the sub-opcode of an inbound Host packet.
func DecodeHostAction(d *Decoder) HostAction {
	return HostAction(d.ReadU8("host_action"))
}

// HostOnGameEndRequest tells the server the host's match has finished;
// it carries no body, the room is known from the connection's binding.
type HostOnGameEndRequest struct{}

// HostSetInventoryRequest, HostSetLoadoutRequest and HostSetBuyMenuRequest
// are host-proxied reads: the host is asking the server to fetch another
// room member's gateway-backed projection on their behalf, so all three
// share the same shape.
type HostSetInventoryRequest struct {
	TargetUserID uint32
}

func DecodeHostSetInventoryRequest(d *Decoder) HostSetInventoryRequest {
	return HostSetInventoryRequest{TargetUserID: d.ReadU32("target_user_id")}
}

type HostSetLoadoutRequest struct {
	TargetUserID uint32
}

func DecodeHostSetLoadoutRequest(d *Decoder) HostSetLoadoutRequest {
	return HostSetLoadoutRequest{TargetUserID: d.ReadU32("target_user_id")}
}

type HostSetBuyMenuRequest struct {
	TargetUserID uint32
}

func DecodeHostSetBuyMenuRequest(d *Decoder) HostSetBuyMenuRequest {
	return HostSetBuyMenuRequest{TargetUserID: d.ReadU32("target_user_id")}
}

// HostInventoryRelay carries a fetched projection back to the host. The
// projection itself (items/cosmetics/loadouts/buy menu) is always encoded
// with the same Inventory* types used on login, so the host sees exactly
// the layout it already knows how to parse.
type HostInventoryRelay struct {
	TargetUserID uint32
	Action       HostAction
	Projection   []byte
}

func (p HostInventoryRelay) Encode() []byte {
	return NewEncoder().
		WriteU8(byte(p.Action)).
		WriteU32(p.TargetUserID).
		WriteBytes(p.Projection).
		Bytes()
}
