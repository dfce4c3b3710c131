package window

import (
	"context"
	"fmt"

	"github.com/hollowdom/hollowdom/network"
)

// FetchResource fetches a URL on behalf of the window. The request is
// registered in the task ledger immediately and completed when the callback
// has run, so WaitUntilComplete covers the whole round trip. The callback
// runs as a macrotask on the window's scheduler; the response it receives is
// a Response instance permanently stamped with this window.
func (w *Window) FetchResource(client *network.Client, url string, callback func(*ScopedResponse, error)) error {
	if w.Closed() {
		return fmt.Errorf("fetch %s: window is closed", url)
	}
	if client == nil {
		return fmt.Errorf("fetch %s: no client", url)
	}

	handle := w.ledger.Register("fetch")

	go func() {
		resp, err := client.Get(context.Background(), url)

		w.sched.queueMacrotask(func() {
			defer w.ledger.Complete(handle)

			if w.Closed() {
				return
			}
			if err != nil {
				w.logger.Warn("fetch failed", "url", url, "error", err)
				callback(nil, err)
				return
			}

			inst, cerr := w.Construct("Response", url)
			if cerr != nil {
				callback(nil, cerr)
				return
			}
			scoped := inst.(*ScopedResponse)
			scoped.Status = resp.StatusCode
			scoped.Body = resp.Body
			scoped.Headers = make(map[string]string, len(resp.Headers))
			for name := range resp.Headers {
				scoped.Headers[name] = resp.Headers.Get(name)
			}
			callback(scoped, nil)
		})
	}()

	return nil
}
