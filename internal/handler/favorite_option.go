package handler

import (
	"github.com/kongor-lobby/masterserver/internal/codec"
	"github.com/kongor-lobby/masterserver/internal/network"
)

func (rt *Router) handleFavorite(conn *network.Connection, d *codec.Decoder) error {
	action := codec.DecodeFavoriteAction(d)
	owner := conn.Owner()
	ctx := rt.ctxFor(conn)

	switch action {
	case codec.FavoriteActionSetLoadout:
		req := codec.DecodeFavoriteSetLoadoutRequest(d)
		if d.Err() != nil {
			return d.Err()
		}
		loadout := codec.Loadout{Name: req.LoadoutName, WeaponSlots: req.WeaponSlots}
		if err := rt.Gateway.SetFavoriteLoadout(ctx, owner.UserID, loadout); err != nil {
			conn.Logger().Warn().Err(err).Msg("favorite loadout write-through failed")
		}
		return nil

	case codec.FavoriteActionSetCosmetics:
		req := codec.DecodeFavoriteSetCosmeticsRequest(d)
		if d.Err() != nil {
			return d.Err()
		}
		if err := rt.Gateway.SetFavoriteCosmetics(ctx, owner.UserID, req.Cosmetics); err != nil {
			conn.Logger().Warn().Err(err).Msg("favorite cosmetics write-through failed")
		}
		return nil

	default:
		conn.Logger().Warn().Uint8("favoriteAction", uint8(action)).Msg("unknown favorite action, dropping")
		return nil
	}
}

func (rt *Router) handleOption(conn *network.Connection, d *codec.Decoder) error {
	action := codec.DecodeOptionAction(d)
	owner := conn.Owner()
	ctx := rt.ctxFor(conn)

	switch action {
	case codec.OptionActionSetBuyMenu:
		req := codec.DecodeOptionSetBuyMenuRequest(d)
		if d.Err() != nil {
			return d.Err()
		}
		if err := rt.Gateway.SetOptionBuyMenu(ctx, owner.UserID, req.Slots); err != nil {
			conn.Logger().Warn().Err(err).Msg("option buy-menu write-through failed")
		}
		return nil

	default:
		conn.Logger().Warn().Uint8("optionAction", uint8(action)).Msg("unknown option action, dropping")
		return nil
	}
}
