package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kongor-lobby/masterserver/internal/events"
)

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "masterserver",
	})
}

func (s *Server) handleChannels(c *gin.Context) {
	list := s.directory.ChannelList()
	out := make([]gin.H, 0, len(list.Entries))
	for _, e := range list.Entries {
		out = append(out, gin.H{
			"serverIndex":  e.ServerIndex,
			"channelIndex": e.ChannelIndex,
			"name":         e.Name,
			"roomCount":    e.RoomCount,
		})
	}
	c.JSON(http.StatusOK, gin.H{"channels": out})
}

func (s *Server) handleRooms(c *gin.Context) {
	serverIdx, err := strconv.ParseUint(c.Param("serverIdx"), 10, 16)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid serverIdx"})
		return
	}
	channelIdx, err := strconv.ParseUint(c.Param("channelIdx"), 10, 16)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channelIdx"})
		return
	}

	server, ok := s.directory.Server(uint16(serverIdx))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "channel server not found"})
		return
	}
	channel, ok := server.Channel(uint16(channelIdx))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
		return
	}

	rooms := channel.ListRooms()
	out := make([]gin.H, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, gin.H{
			"roomId":      r.RoomID,
			"roomName":    r.RoomName,
			"playerCount": r.PlayerCount,
			"maxPlayers":  r.MaxPlayers,
			"inGame":      r.InGame,
		})
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

func (s *Server) handleSessions(c *gin.Context) {
	sessions := s.sessions.All()
	out := make([]gin.H, 0, len(sessions))
	for _, sess := range sessions {
		serverIdx, channelIdx := sess.Channel()
		out = append(out, gin.H{
			"userId":             sess.UserID,
			"userName":           sess.UserName,
			"currentRoomId":      sess.RoomID(),
			"channelServerIndex": serverIdx,
			"channelIndex":       channelIdx,
		})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(sessions), "sessions": out})
}

func (s *Server) handleKick(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userId"})
		return
	}

	conn, ok := s.conns.ByOwner(uint32(userID))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no live connection for that userId"})
		return
	}
	conn.Close()

	operatorID, _ := c.Get("operatorId")
	if s.eventBus != nil {
		s.eventBus.Emit(context.Background(), events.Event{
			Type:   events.EventUserKicked,
			Source: "ops-api",
			Payload: events.KickPayload{
				UserID:   uint32(userID),
				Reason:   "operator kick",
				Operator: fmt.Sprintf("%v", operatorID),
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{"status": "kicked", "userId": userID})
}
