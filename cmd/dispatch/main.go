package main

import (
	"flag"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	threadproxy "github.com/wippyai/thread-proxy"
	"github.com/wippyai/thread-proxy/proxy"
	"github.com/wippyai/thread-proxy/sig"
)

func main() {
	var (
		workers     = flag.Int("workers", 4, "Number of worker threads")
		calls       = flag.Int("calls", 1000, "Calls dispatched per worker")
		mode        = flag.String("mode", "async", "Dispatch mode: sync, async, waitable")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*workers, *calls, *mode); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run drives a host thread from this goroutine while workers dispatch
// increments at it, then reports what the host observed.
func run(workers, calls int, mode string) error {
	reg := proxy.NewRegistry()
	defer reg.Close()

	host := reg.Host()
	sigVI := sig.MustEncode(sig.RetVoid, sig.ParamInt)
	sigII := sig.MustEncode(sig.RetInt, sig.ParamInt)

	var counter int64
	bump := func(args []threadproxy.Arg) threadproxy.Ret {
		counter += int64(args[0].Int())
		return threadproxy.Void()
	}
	bumpAndRead := func(args []threadproxy.Arg) threadproxy.Ret {
		counter += int64(args[0].Int())
		return threadproxy.RetOfInt(int32(counter))
	}

	var done atomic.Bool
	var g errgroup.Group
	start := time.Now()

	for w := 0; w < workers; w++ {
		t := reg.NewThread(fmt.Sprintf("worker-%d", w))
		g.Go(func() error {
			for i := 0; i < calls; i++ {
				switch mode {
				case "sync":
					if _, err := t.CallSync(host, sigII, bumpAndRead, threadproxy.Int(1)); err != nil {
						return err
					}
				case "waitable":
					c, err := t.CallAsyncWaitable(host, sigII, bumpAndRead, threadproxy.Int(1))
					if err != nil {
						return err
					}
					if _, _, err := c.Wait(-1); err != nil {
						return err
					}
					if err := c.Close(); err != nil {
						return err
					}
				case "async":
					if err := t.CallAsync(host, sigVI, bump, threadproxy.Int(1)); err != nil {
						return err
					}
				default:
					return fmt.Errorf("unknown mode %q", mode)
				}
			}
			return nil
		})
	}

	// Host loop: drain until every worker is finished and the queue is empty.
	go func() {
		g.Wait()
		done.Store(true)
	}()
	for !done.Load() {
		host.Sleep(time.Millisecond)
	}
	host.ProcessQueuedCalls()

	if err := g.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	total := int64(workers) * int64(calls)
	fmt.Printf("Mode:      %s\n", mode)
	fmt.Printf("Workers:   %d\n", workers)
	fmt.Printf("Dispatched %d calls in %v (%.0f calls/sec)\n",
		total, elapsed.Round(time.Microsecond), float64(total)/elapsed.Seconds())
	fmt.Printf("Host counter: %d\n", counter)
	if counter != total {
		return fmt.Errorf("counter mismatch: want %d, got %d", total, counter)
	}
	return nil
}
