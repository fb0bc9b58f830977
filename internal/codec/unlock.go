package codec

import _ "embed"

// UnlockBlob is the literal byte sequence the client expects between the
// cosmetics and loadout frames of the login sequence. Its internal
// structure (an item-unlock ledger, by every indication) has not been
// reverse-engineered; it is shipped byte-identical rather than
// regenerated.
//
//go:embed assets/unlock.bin
var UnlockBlob []byte

// UnlockBlobPush wraps UnlockBlob for the frame it travels in. It has no
// sub-opcode or marker byte of its own: the payload is the raw blob, and
// it travels in its own PtUnlockBlob frame.
type UnlockBlobPush struct{}

func (p UnlockBlobPush) Encode() []byte {
	return NewEncoder().WriteBytes(UnlockBlob).Bytes()
}
