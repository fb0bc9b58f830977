package codec

// PacketType is the single opcode byte carried by every frame.
type PacketType byte

// Inbound opcodes (client -> server).
const (
	PtVersion     PacketType = 0x01
	PtLogin       PacketType = 0x02
	PtHeartbeat   PacketType = 0x03
	PtRoomList    PacketType = 0x04
	PtRoomRequest PacketType = 0x05
	PtHost        PacketType = 0x06
	PtFavorite    PacketType = 0x07
	PtOption      PacketType = 0x08
	PtChat        PacketType = 0x09
	PtUdp         PacketType = 0x0A
)

// Outbound opcodes (server -> client).
const (
	PtUserStart    PacketType = 0x81
	PtUserInfo     PacketType = 0x82
	PtInventory    PacketType = 0x83
	PtChannelList  PacketType = 0x84
	PtRoomReply    PacketType = 0x85 // mirrors PtRoomRequest actions going back to the room
	PtHostReply    PacketType = 0x86
	PtChatReply    PacketType = 0x87
	PtLoginFailure PacketType = 0x88
	PtUnlockBlob   PacketType = 0x89
	// PtFavoritePush and PtOptionPush carry the outbound push form of a
	// Favorite/Option projection, reusing the inbound sub-opcode space
	// (FavoriteAction/OptionAction) so a client parses both directions the
	// same way.
	PtFavoritePush  PacketType = 0x8A
	PtOptionPush    PacketType = 0x8B
	PtRoomListReply PacketType = 0x8C
)

// RoomAction is the sub-opcode carried as the first byte of a RoomRequest
// (inbound) or room broadcast (outbound) payload.
type RoomAction byte

const (
	RoomActionCreate           RoomAction = 0x01
	RoomActionJoin             RoomAction = 0x02
	RoomActionLeave            RoomAction = 0x03
	RoomActionStart            RoomAction = 0x04
	RoomActionSetUserTeam      RoomAction = 0x05
	RoomActionToggleReady      RoomAction = 0x06
	RoomActionUpdateSettings   RoomAction = 0x07
	RoomActionSetCountdown     RoomAction = 0x08
	RoomActionConnectionFailed RoomAction = 0x09

	// Outbound-only room broadcasts, reusing the same sub-opcode space.
	RoomActionPlayerJoined RoomAction = 0x40
	RoomActionPlayerLeft   RoomAction = 0x41
	RoomActionSetHost      RoomAction = 0x42
	RoomActionReadyChanged RoomAction = 0x43
	RoomActionGameStarted  RoomAction = 0x44
	RoomActionGameEnded    RoomAction = 0x45
	RoomActionSettingsSet  RoomAction = 0x46
	RoomActionRoomRemoved  RoomAction = 0x47
	RoomActionFullState    RoomAction = 0x48
)

// HostAction is the sub-opcode of a Host packet (inbound request and
// outbound relay share the same action space).
type HostAction byte

const (
	HostActionOnGameEnd    HostAction = 0x01
	HostActionSetInventory HostAction = 0x02
	HostActionSetLoadout   HostAction = 0x03
	HostActionSetBuyMenu   HostAction = 0x04
)

// FavoriteAction is the sub-opcode of a Favorite write-through packet.
type FavoriteAction byte

const (
	FavoriteActionSetLoadout   FavoriteAction = 0x01
	FavoriteActionSetCosmetics FavoriteAction = 0x02
)

// OptionAction is the sub-opcode of an Option write-through packet.
type OptionAction byte

const (
	OptionActionSetBuyMenu OptionAction = 0x01
)
