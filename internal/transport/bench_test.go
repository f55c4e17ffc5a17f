package transport

import (
	"bufio"
	"net"
	"testing"
)

// BenchmarkLink_RoundTrip measures one command and its reply over an
// in-memory connection, framing and trace included.
func BenchmarkLink_RoundTrip(b *testing.B) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		r := bufio.NewReader(server)
		for {
			if _, err := r.ReadString('\n'); err != nil {
				return
			}
			if _, err := server.Write([]byte("ok\r\n")); err != nil {
				return
			}
		}
	}()

	link := NewLink(client, LinkOptions{})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := link.SendLine("move0;-10"); err != nil {
			b.Fatal(err)
		}
		if _, err := link.ReceiveLine(); err != nil {
			b.Fatal(err)
		}
	}
}
