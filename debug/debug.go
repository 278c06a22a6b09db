package debug

import (
	"fmt"
	"os"
	"strconv"

	json "github.com/goccy/go-json"
)

type debug struct {
	Decode  bool
	Encode  bool
	Convert bool
	Parse   bool
}

var d *debug

func init() {
	d = &debug{}
	d.Decode = boolEnv("GRAPHCODEC_DEBUG_DECODE")
	d.Encode = boolEnv("GRAPHCODEC_DEBUG_ENCODE")
	d.Convert = boolEnv("GRAPHCODEC_DEBUG_CONVERT")
	d.Parse = boolEnv("GRAPHCODEC_DEBUG_PARSE")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Decode() bool {
	return d.Decode
}
func Encode() bool {
	return d.Encode
}
func Convert() bool {
	return d.Convert
}
func Parse() bool {
	return d.Parse
}

func LogAny(v any) {
	d, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", v)
		return
	}
	os.Stderr.Write(d)
}
