package sync

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Listen dials a TCP sync server and calls fn for every event line until
// ctx is cancelled or the connection drops. Lines that are not JSON
// objects are skipped.
func Listen(ctx context.Context, addr string, fn func(map[string]any)) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		var ev map[string]any
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			continue
		}
		fn(ev)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return fmt.Errorf("connection to %s closed", addr)
}
