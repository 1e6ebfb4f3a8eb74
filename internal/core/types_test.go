package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"testing"
)

func TestClassifyProtocol(t *testing.T) {
	tests := []struct {
		proto    uint8
		expected Protocol
	}{
		{6, ProtocolTCP},
		{17, ProtocolUDP},
		{1, ProtocolOther},  // ICMP
		{0, ProtocolOther},  // HOPOPT
		{47, ProtocolOther}, // GRE
		{132, ProtocolOther},
		{255, ProtocolOther},
	}

	for _, tt := range tests {
		if got := ClassifyProtocol(tt.proto); got != tt.expected {
			t.Errorf("ClassifyProtocol(%d): expected %q, got %q", tt.proto, tt.expected, got)
		}
	}
}

func TestRecordString(t *testing.T) {
	r := Record{Protocol: ProtocolTCP, SourceIP: "10.0.0.5", DestIP: "1.1.1.1", Size: 60}
	expected := "[TCP] 10.0.0.5 -> 1.1.1.1 | Size: 60 bytes"
	if r.String() != expected {
		t.Errorf("Expected %q, got %q", expected, r.String())
	}
}

func TestRecordJSONFieldNames(t *testing.T) {
	r := Record{Protocol: ProtocolUDP, SourceIP: "192.168.1.1", DestIP: "192.168.1.2", Size: 42}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"protocol", "source_ip", "dest_ip", "size_bytes"} {
		if _, ok := m[key]; !ok {
			t.Errorf("expected key %q in %s", key, data)
		}
	}
	if _, ok := m["timestamp"]; ok {
		t.Errorf("expected zero timestamp to be omitted, got %s", data)
	}
}

func TestInterfaceInfo(t *testing.T) {
	t.Run("HasAddrs", func(t *testing.T) {
		var empty InterfaceInfo
		if empty.HasAddrs() {
			t.Error("expected HasAddrs=false for zero value")
		}
		withAddr := InterfaceInfo{Addrs: []netip.Prefix{netip.MustParsePrefix("10.0.0.5/24")}}
		if !withAddr.HasAddrs() {
			t.Error("expected HasAddrs=true")
		}
	})

	t.Run("String", func(t *testing.T) {
		info := InterfaceInfo{
			Name:  "eth1",
			Addrs: []netip.Prefix{netip.MustParsePrefix("10.0.0.5/24")},
		}
		s := info.String()
		for _, part := range []string{"Name: eth1", "10.0.0.5/24", "Up: false", "Loopback: false"} {
			if !strings.Contains(s, part) {
				t.Errorf("expected %q in %q", part, s)
			}
		}
	})

	t.Run("JSON", func(t *testing.T) {
		info := InterfaceInfo{
			Name:     "lo",
			Addrs:    []netip.Prefix{netip.MustParsePrefix("127.0.0.1/8")},
			Up:       true,
			Loopback: true,
		}
		data, err := json.Marshal(info)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if !strings.Contains(string(data), `"ips":["127.0.0.1/8"]`) {
			t.Errorf("unexpected JSON: %s", data)
		}
		if !strings.Contains(string(data), `"is_loopback":true`) {
			t.Errorf("unexpected JSON: %s", data)
		}
	})
}

func TestSentinelErrorsWrap(t *testing.T) {
	all := []error{
		ErrEnumerationFailed,
		ErrNoUsableInterface,
		ErrChannelOpen,
		ErrBackendUnsupported,
		ErrInvalidCount,
		ErrCaptureAborted,
		ErrReadRetriesExhausted,
		ErrSourceExhausted,
		ErrConfigInvalid,
	}
	for i, target := range all {
		wrapped := fmt.Errorf("context: %w", target)
		if !errors.Is(wrapped, target) {
			t.Errorf("expected wrapped error to match %v", target)
		}
		for j, other := range all {
			if i != j && errors.Is(wrapped, other) {
				t.Errorf("%v should not match %v", target, other)
			}
		}
	}
}
