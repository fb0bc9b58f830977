// Package connector is the gateway to the two out-of-process services this
// server treats as authoritative for account identity and player
// inventory: the user service and the inventory service. Every read is
// through this package; every write is through this package. Nothing else
// in the module talks HTTP to them directly.
package connector

import "github.com/kongor-lobby/masterserver/internal/codec"

// User is the account projection returned by the user service.
type User struct {
	UserID     uint32
	UserName   string
	PlayerName string
	Level      uint16
	Avatar     uint16
	CurExp     uint32
	MaxExp     uint32
	Rank       uint16
	VipLevel   uint8
	Wins       uint32
	Kills      uint32
	Deaths     uint32
	Assists    uint32
}

func (u User) ToUserInfoFull() codec.UserInfoFull {
	return codec.UserInfoFull{
		UserID:     u.UserID,
		UserName:   u.UserName,
		PlayerName: u.PlayerName,
		Level:      u.Level,
		Avatar:     u.Avatar,
		CurExp:     u.CurExp,
		MaxExp:     u.MaxExp,
		Rank:       u.Rank,
		VipLevel:   u.VipLevel,
		Wins:       u.Wins,
		Kills:      u.Kills,
		Deaths:     u.Deaths,
		Assists:    u.Assists,
	}
}

// Inventory bundles the four orthogonal projections the inventory service
// owns for one user. All four are fetched in one request and carried
// together (login, and host-proxied relays).
type Inventory struct {
	ItemIDs   []uint32
	Cosmetics codec.CosmeticSlots
	Loadouts  []codec.Loadout
	BuyMenu   []uint32
}
