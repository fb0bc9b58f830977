package codec

import "testing"

func TestLoginRequestRoundTrip(t *testing.T) {
	e := NewEncoder().WriteString("alice").WriteString("s3cret")
	d := NewDecoder(e.Bytes())
	got := DecodeLoginRequest(d)
	if d.Err() != nil {
		t.Fatalf("decode error: %v", d.Err())
	}
	if got.Username != "alice" || got.Password != "s3cret" {
		t.Errorf("got %+v", got)
	}
}

func TestDecoderReportsTruncatedPayload(t *testing.T) {
	d := NewDecoder([]byte{5, 'a', 'b'}) // claims a 5-byte string, only 2 follow
	_ = d.ReadString("username")
	if d.Err() == nil {
		t.Fatal("expected a truncation error")
	}
}

func TestRoomSettingsRoundTrip(t *testing.T) {
	want := DefaultRoomSettings()
	want.EnableBots = 1
	want.WinLimit = 16

	e := NewEncoder()
	encodeRoomSettings(e, want)
	got := decodeRoomSettings(NewDecoder(e.Bytes()))

	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRoomCreateRequestRoundTrip(t *testing.T) {
	e := NewEncoder().WriteString("Dust Runners")
	encodeRoomSettings(e, DefaultRoomSettings())

	got := DecodeRoomCreateRequest(NewDecoder(e.Bytes()))
	if got.RoomName != "Dust Runners" {
		t.Errorf("room name = %q", got.RoomName)
	}
	if got.Settings != DefaultRoomSettings() {
		t.Errorf("settings = %+v, want defaults", got.Settings)
	}
}

func TestRoomFullStateEncodeIsDeterministic(t *testing.T) {
	state := RoomFullState{
		RoomID:     7,
		RoomName:   "room",
		HostUserID: 1,
		InGame:     false,
		Settings:   DefaultRoomSettings(),
		Members: []RoomMemberInfo{
			{UserID: 1, UserName: "host", Ready: true, Team: 0},
			{UserID: 2, UserName: "guest", Ready: false, Team: 1},
		},
	}

	a := state.Encode()
	b := state.Encode()
	if string(a) != string(b) {
		t.Fatal("encoding the same state twice produced different bytes")
	}
	if a[0] != byte(RoomActionFullState) {
		t.Errorf("leading action byte = 0x%02X, want 0x%02X", a[0], RoomActionFullState)
	}
}

func TestUnlockBlobLength(t *testing.T) {
	if len(UnlockBlob) == 0 {
		t.Fatal("embedded unlock blob is empty")
	}
}

func TestUdpHoleProbeRoundTrip(t *testing.T) {
	encoded := EncodeUdpHoleProbe(UdpHoleProbe{ConnectionSequence: 99})
	got, err := DecodeUdpHoleProbe(encoded)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if got.ConnectionSequence != 99 {
		t.Errorf("got %+v", got)
	}
}

func TestUdpHoleProbeRejectsBadMagic(t *testing.T) {
	bad := EncodeUdpHoleProbe(UdpHoleProbe{ConnectionSequence: 1})
	bad[0] = 0x00
	if _, err := DecodeUdpHoleProbe(bad); err == nil {
		t.Fatal("expected an error for a probe with the wrong magic byte")
	}
}
