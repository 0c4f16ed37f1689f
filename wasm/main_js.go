//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/dassCS/qP/api"
	"github.com/dassCS/qP/raster"
)

func bytesFromJS(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

func bytesToJS(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

func qpEncode(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing image bytes")
	}
	out, err := api.EncodeImage(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

// qpDecode(bytes, ext) converts QP bytes into an image named by ext ("png", "webp", ...).
func qpDecode(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("missing qp bytes or output extension")
	}
	f, err := raster.ParseFormat(args[1].String())
	if err != nil {
		return js.ValueOf(err.Error())
	}
	out, err := api.DecodeImage(bytesFromJS(args[0]), f, nil)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func qpInfo(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing qp bytes")
	}
	info, err := api.Inspect(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return js.ValueOf(map[string]any{
		"width":       int(info.Width),
		"height":      int(info.Height),
		"channels":    int(info.Channels),
		"compression": info.Compression.String(),
		"payloadSize": info.PayloadSize,
		"pixelSize":   info.PixelSize,
		"ratio":       info.Ratio(),
	})
}

func main() {
	js.Global().Set("qpEncode", js.FuncOf(qpEncode))
	js.Global().Set("qpDecode", js.FuncOf(qpDecode))
	js.Global().Set("qpInfo", js.FuncOf(qpInfo))
	select {}
}
