// Package cli implements the interactive operator console: a line-oriented
// REPL for inspecting live rooms/sessions and issuing admin actions, run
// alongside the TCP/UDP listeners rather than in place of them.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/kongor-lobby/masterserver/internal/codec"
	"github.com/kongor-lobby/masterserver/internal/events"
	"github.com/kongor-lobby/masterserver/internal/lobby"
	"github.com/kongor-lobby/masterserver/internal/network"
	"github.com/kongor-lobby/masterserver/internal/session"
)

// CLI is the operator console. It has direct read/write access to the same
// in-memory state the protocol handlers mutate, so "kick" and "broadcast"
// exercise the exact same Connection.Close/Room.Broadcast paths a protocol
// event would.
type CLI struct {
	directory *lobby.Directory
	sessions  *session.Registry
	conns     *network.Registry
	eventBus  *events.EventBus
	shutdown  context.CancelFunc
}

// New creates an operator console. shutdown is invoked by the "shutdown"
// command to begin graceful server teardown.
func New(directory *lobby.Directory, sessions *session.Registry, conns *network.Registry,
	eventBus *events.EventBus, shutdown context.CancelFunc) *CLI {
	return &CLI{directory: directory, sessions: sessions, conns: conns, eventBus: eventBus, shutdown: shutdown}
}

// Run reads commands from stdin until ctx is cancelled or stdin closes.
func (c *CLI) Run(ctx context.Context) {
	fmt.Println("masterserver console ready. Type 'help' for available commands.")
	scanner := bufio.NewScanner(os.Stdin)

	lines := make(chan string)
	go func() {
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		fmt.Print("masterserver> ")
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			c.execute(ctx, strings.TrimSpace(line))
		}
	}
}

func (c *CLI) execute(ctx context.Context, line string) {
	if line == "" {
		return
	}
	fields := strings.Fields(line)
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch cmd {
	case "help", "h", "?":
		c.printHelp()
	case "status":
		c.printStatus()
	case "rooms":
		err = c.cmdRooms(args)
	case "sessions":
		c.printSessions()
	case "kick":
		err = c.cmdKick(ctx, args)
	case "broadcast":
		err = c.cmdBroadcast(ctx, args)
	case "shutdown":
		fmt.Println("shutting down...")
		if c.eventBus != nil {
			c.eventBus.Emit(ctx, events.Event{Type: events.EventShutdown, Source: "cli"})
		}
		if c.shutdown != nil {
			c.shutdown()
		}
	default:
		fmt.Printf("unknown command: %q. Type 'help' for available commands.\n", cmd)
	}
	if err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

func (c *CLI) printHelp() {
	fmt.Println(`commands:
  status                          session/room counts
  rooms <serverIdx> <channelIdx>  list rooms in a channel
  sessions                        list bound sessions
  kick <userId>                   close a user's connection
  broadcast <serverIdx> <channelIdx> <text...>  chat-broadcast a channel
  shutdown                        begin graceful shutdown`)
}

func (c *CLI) printStatus() {
	fmt.Printf("sessions: %d   connections: %d\n", c.sessions.Count(), c.conns.Count())
}

func (c *CLI) cmdRooms(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: rooms <serverIdx> <channelIdx>")
	}
	serverIdx, err := parseUint16(args[0])
	if err != nil {
		return err
	}
	channelIdx, err := parseUint16(args[1])
	if err != nil {
		return err
	}

	server, ok := c.directory.Server(serverIdx)
	if !ok {
		return fmt.Errorf("no channel server at index %d", serverIdx)
	}
	channel, ok := server.Channel(channelIdx)
	if !ok {
		return fmt.Errorf("no channel at index %d", channelIdx)
	}

	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader([]string{"Room", "Name", "Players", "InGame"})
	for _, r := range channel.ListRooms() {
		tw.Append([]string{
			strconv.FormatUint(uint64(r.RoomID), 10),
			r.RoomName,
			fmt.Sprintf("%d/%d", r.PlayerCount, r.MaxPlayers),
			strconv.FormatBool(r.InGame),
		})
	}
	tw.Render()
	return nil
}

func (c *CLI) printSessions() {
	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader([]string{"UserID", "UserName", "Room"})
	for _, sess := range c.sessions.All() {
		tw.Append([]string{
			strconv.FormatUint(uint64(sess.UserID), 10),
			sess.UserName,
			strconv.FormatUint(uint64(sess.RoomID()), 10),
		})
	}
	tw.Render()
}

func (c *CLI) cmdKick(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: kick <userId>")
	}
	userID, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid userId: %w", err)
	}

	conn, ok := c.conns.ByOwner(uint32(userID))
	if !ok {
		return fmt.Errorf("no live connection for userId %d", userID)
	}
	conn.Close()

	if c.eventBus != nil {
		c.eventBus.Emit(ctx, events.Event{
			Type:    events.EventUserKicked,
			Source:  "cli",
			Payload: events.KickPayload{UserID: uint32(userID), Reason: "cli kick", Operator: "console"},
		})
	}
	fmt.Printf("kicked userId %d\n", userID)
	return nil
}

func (c *CLI) cmdBroadcast(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: broadcast <serverIdx> <channelIdx> <text...>")
	}
	serverIdx, err := parseUint16(args[0])
	if err != nil {
		return err
	}
	channelIdx, err := parseUint16(args[1])
	if err != nil {
		return err
	}
	text := strings.Join(args[2:], " ")

	server, ok := c.directory.Server(serverIdx)
	if !ok {
		return fmt.Errorf("no channel server at index %d", serverIdx)
	}
	channel, ok := server.Channel(channelIdx)
	if !ok {
		return fmt.Errorf("no channel at index %d", channelIdx)
	}

	payload := codec.ChatRelay{FromUserID: 0, FromUserName: "operator", Text: text}.Encode()
	for _, room := range channel.Rooms() {
		room.Broadcast(codec.PtChatReply, payload, 0)
	}

	if c.eventBus != nil {
		c.eventBus.Emit(ctx, events.Event{
			Type:   events.EventBroadcastMessage,
			Source: "cli",
			Payload: events.BroadcastPayload{
				ChannelServerIndex: serverIdx, ChannelIndex: channelIdx, Text: text, Operator: "console",
			},
		})
	}
	fmt.Println("broadcast sent")
	return nil
}

func parseUint16(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid index: %w", err)
	}
	return uint16(v), nil
}
