package proxy

import (
	"testing"

	threadproxy "github.com/wippyai/thread-proxy"
)

func BenchmarkCallSync_InPlace(b *testing.B) {
	reg := NewRegistry()
	defer reg.Close()
	host := reg.Host()

	fn := func(args []threadproxy.Arg) threadproxy.Ret {
		return threadproxy.RetOfInt(args[0].Int())
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := host.CallSync(host, sigII, fn, threadproxy.Int(1)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCallAsync_EnqueueDrain(b *testing.B) {
	reg := NewRegistry()
	defer reg.Close()
	host := reg.Host()
	worker := reg.NewThread("worker")

	fn := func([]threadproxy.Arg) threadproxy.Ret {
		return threadproxy.Void()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := worker.CallAsync(host, sigV, fn); err != nil {
			b.Fatal(err)
		}
		if i%1024 == 1023 {
			host.ProcessQueuedCalls()
		}
	}
	host.ProcessQueuedCalls()
}

func BenchmarkEncodeValidate(b *testing.B) {
	reg := NewRegistry()
	defer reg.Close()
	host := reg.Host()
	args := []threadproxy.Arg{threadproxy.Int(1)}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := host.validate(host, sigVI, benchNop, args); err != nil {
			b.Fatal(err)
		}
	}
}

var benchNop = threadproxy.Func(func([]threadproxy.Arg) threadproxy.Ret {
	return threadproxy.Void()
})
