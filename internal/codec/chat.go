package codec

// ChatRequest is a chat line sent to the caller's current room. There is
// no channel-wide chat: a user outside a room has nowhere for it to go,
// and the handler drops it.
type ChatRequest struct {
	Text string
}

func DecodeChatRequest(d *Decoder) ChatRequest {
	return ChatRequest{Text: d.ReadString("text")}
}

// ChatRelay is the broadcast form, stamped with the sender's identity so
// clients never have to resolve a user ID for a chat line by themselves.
type ChatRelay struct {
	FromUserID   uint32
	FromUserName string
	Text         string
}

func (p ChatRelay) Encode() []byte {
	return NewEncoder().
		WriteU32(p.FromUserID).
		WriteString(p.FromUserName).
		WriteString(p.Text).
		Bytes()
}
