package main

import (
	"errors"
	"strings"
	"testing"
)

func TestReadLines_DeliversEverythingBeforeClosing(t *testing.T) {
	// More lines than the channel buffers, so delivery must continue
	// past EOF until the consumer has drained them all.
	const count = 40
	input := strings.Repeat(`{"method":"initialized"}`+"\n", count)

	lines, errc := readLines(strings.NewReader(input))

	received := 0
	for line := range lines {
		if len(line) == 0 {
			t.Error("received empty line")
		}
		received++
	}
	if received != count {
		t.Errorf("received %d lines, want %d", received, count)
	}
	if err := <-errc; err != nil {
		t.Errorf("read error = %v, want nil", err)
	}
}

func TestReadLines_ErrorAvailableWhenChannelCloses(t *testing.T) {
	lines, errc := readLines(&failingReader{})

	for range lines {
	}
	if err := <-errc; err == nil {
		t.Error("read error = nil, want the reader's failure")
	}
}

type failingReader struct{}

func (*failingReader) Read([]byte) (int, error) {
	return 0, errors.New("stream broke")
}
