package wasmhost

import (
	"context"
	"encoding/binary"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/poll-loop/host"
)

// ModuleName is the import name guests use for the host contract.
const ModuleName = "pollloop:io/host"

// bridge adapts a host.Host to wazero host functions operating on the
// calling guest's linear memory.
type bridge struct {
	host host.Host
	log  *zap.Logger
}

// Option configures the bridge.
type Option func(*bridge)

// WithLogger sets the bridge logger. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(b *bridge) {
		if log != nil {
			b.log = log
		}
	}
}

// Register instantiates the host module on the runtime. Guests importing
// ModuleName get the exports described in the package documentation.
func Register(ctx context.Context, r wazero.Runtime, h host.Host, opts ...Option) (api.Module, error) {
	b := &bridge{host: h, log: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}

	builder := r.NewHostModuleBuilder(ModuleName)

	i32 := api.ValueTypeI32
	i64 := api.ValueTypeI64

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(b.read), []api.ValueType{i32, i32, i32}, []api.ValueType{i64}).
		Export("read")
	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(b.write), []api.ValueType{i32, i32, i32}, []api.ValueType{i64}).
		Export("write")
	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(b.pollList), []api.ValueType{i32, i32, i32}, []api.ValueType{i32}).
		Export("poll-list")
	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(b.dropPollable), []api.ValueType{i32}, nil).
		Export("drop-pollable")
	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(b.closeRead), []api.ValueType{i32}, nil).
		Export("close-read")
	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(b.closeWrite), []api.ValueType{i32}, nil).
		Export("close-write")

	return builder.Instantiate(ctx)
}

func (b *bridge) read(_ context.Context, mod api.Module, stack []uint64) {
	handle := host.Handle(api.DecodeU32(stack[0]))
	ptr := api.DecodeU32(stack[1])
	max := api.DecodeU32(stack[2])

	res, err := b.host.Read(handle, uint64(max))
	switch {
	case err != nil:
		b.log.Warn("guest read failed", zap.Uint32("handle", uint32(handle)), zap.Error(err))
		stack[0] = uint64(PackError())
	case res.Blocked:
		stack[0] = uint64(PackBlocked(res.Pollable))
	case res.EOF:
		stack[0] = uint64(PackEOF())
	default:
		if len(res.Data) > 0 && !mod.Memory().Write(ptr, res.Data) {
			b.log.Warn("guest read buffer out of range",
				zap.Uint32("ptr", ptr), zap.Int("len", len(res.Data)))
			stack[0] = uint64(PackError())
			return
		}
		stack[0] = uint64(PackOK(uint32(len(res.Data))))
	}
}

func (b *bridge) write(_ context.Context, mod api.Module, stack []uint64) {
	handle := host.Handle(api.DecodeU32(stack[0]))
	ptr := api.DecodeU32(stack[1])
	length := api.DecodeU32(stack[2])

	var buf []byte
	if length > 0 {
		data, ok := mod.Memory().Read(ptr, length)
		if !ok {
			b.log.Warn("guest write buffer out of range",
				zap.Uint32("ptr", ptr), zap.Uint32("len", length))
			stack[0] = uint64(PackError())
			return
		}
		buf = data
	}

	res, err := b.host.Write(handle, buf)
	switch {
	case err != nil:
		b.log.Warn("guest write failed", zap.Uint32("handle", uint32(handle)), zap.Error(err))
		stack[0] = uint64(PackError())
	case res.Blocked:
		stack[0] = uint64(PackBlocked(res.Pollable))
	default:
		stack[0] = uint64(PackOK(uint32(res.Accepted)))
	}
}

func (b *bridge) pollList(ctx context.Context, mod api.Module, stack []uint64) {
	ptr := api.DecodeU32(stack[0])
	count := api.DecodeU32(stack[1])
	out := api.DecodeU32(stack[2])

	if count == 0 {
		stack[0] = api.EncodeI32(pollListError)
		return
	}

	raw, ok := mod.Memory().Read(ptr, count*4)
	if !ok {
		b.log.Warn("guest poll list out of range", zap.Uint32("ptr", ptr), zap.Uint32("count", count))
		stack[0] = api.EncodeI32(pollListError)
		return
	}

	pollables := make([]host.Pollable, count)
	for i := range pollables {
		pollables[i] = host.Pollable(binary.LittleEndian.Uint32(raw[i*4:]))
	}

	ready, err := b.host.PollList(ctx, pollables)
	if err != nil || len(ready) == 0 {
		b.log.Warn("guest poll failed", zap.Int("pollables", len(pollables)), zap.Error(err))
		stack[0] = api.EncodeI32(pollListError)
		return
	}

	buf := make([]byte, len(ready)*4)
	for i, idx := range ready {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	if !mod.Memory().Write(out, buf) {
		b.log.Warn("guest ready buffer out of range", zap.Uint32("out", out), zap.Int("ready", len(ready)))
		stack[0] = api.EncodeI32(pollListError)
		return
	}
	stack[0] = api.EncodeI32(int32(len(ready)))
}

func (b *bridge) dropPollable(_ context.Context, _ api.Module, stack []uint64) {
	b.host.DropPollable(host.Pollable(api.DecodeU32(stack[0])))
}

func (b *bridge) closeRead(_ context.Context, _ api.Module, stack []uint64) {
	b.host.CloseRead(host.Handle(api.DecodeU32(stack[0])))
}

func (b *bridge) closeWrite(_ context.Context, _ api.Module, stack []uint64) {
	b.host.CloseWrite(host.Handle(api.DecodeU32(stack[0])))
}
