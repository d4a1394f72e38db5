package constant

import (
	"testing"
)

func TestConvertUntypedNumeric(t *testing.T) {
	tests := []struct {
		name string
		text string
		to   Kind
		ok   bool
		want string
	}{
		{"decimal to uint8", "255", Uint8, true, "255"},
		{"decimal overflow uint8", "256", Uint8, false, ""},
		{"hex to uint8", "0xFF", Uint8, true, "255"},
		{"hex overflow int8", "0xFF", Int8, false, ""},
		{"negative to int16", "-32768", Int16, true, "-32768"},
		{"negative overflow int16", "-32769", Int16, false, ""},
		{"negative to unsigned", "-1", Uint32, false, ""},
		{"binary to uint16", "0b1010", Uint16, true, "10"},
		{"float text to float32", "1.5", Float32, true, "1.5"},
		{"malformed", "12abc", Uint32, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := MakeUntypedNumeric(tt.text)
			got, ok := v.Convert(tt.to)
			if ok != tt.ok {
				t.Fatalf("Convert(%q, %v) ok = %v, want %v", tt.text, tt.to, ok, tt.ok)
			}
			if ok && got.Format() != tt.want {
				t.Errorf("Convert(%q, %v) = %q, want %q", tt.text, tt.to, got.Format(), tt.want)
			}
		})
	}
}

func TestConvertBetweenIntegers(t *testing.T) {
	v := MakeUint(Uint32, 300)

	if _, ok := v.Convert(Uint8); ok {
		t.Error("300 must not fit uint8")
	}
	if got, ok := v.Convert(Uint16); !ok || got.Format() != "300" {
		t.Errorf("300 -> uint16 = %q, ok=%v", got.Format(), ok)
	}
	if got, ok := v.Convert(Int64); !ok || got.Format() != "300" {
		t.Errorf("300 -> int64 = %q, ok=%v", got.Format(), ok)
	}

	neg := MakeInt(Int32, -5)
	if _, ok := neg.Convert(Uint64); ok {
		t.Error("-5 must not convert to an unsigned kind")
	}
	if got, ok := neg.Convert(Int8); !ok || got.Format() != "-5" {
		t.Errorf("-5 -> int8 = %q, ok=%v", got.Format(), ok)
	}
}

func TestConvertFloatRules(t *testing.T) {
	i := MakeInt(Int32, 7)
	if got, ok := i.Convert(Float64); !ok || got.Format() != "7" {
		t.Errorf("int -> float64 = %q, ok=%v", got.Format(), ok)
	}

	f := MakeFloat(Float64, 3.5)
	if _, ok := f.Convert(Int32); ok {
		t.Error("floats must not narrow into integers")
	}
	if _, ok := f.Convert(Float32); !ok {
		t.Error("float64 -> float32 in range must succeed")
	}

	big := MakeFloat(Float64, 1e39)
	if _, ok := big.Convert(Float32); ok {
		t.Error("1e39 must not fit float32")
	}
}

func TestConvertStringAndBool(t *testing.T) {
	s := MakeString("channel")
	if _, ok := s.Convert(Uint8); ok {
		t.Error("string must not convert to a number")
	}
	if got, ok := s.Convert(String); !ok || got.Format() != "channel" {
		t.Error("identity conversion must succeed")
	}

	d := MakeDocComment(" summary ")
	if got, ok := d.Convert(String); !ok || got.Format() != " summary " {
		t.Errorf("doc comment -> string = %q, ok=%v", got.Format(), ok)
	}

	b := MakeBool(true)
	if _, ok := b.Convert(Uint8); ok {
		t.Error("bool must not convert to a number")
	}
}

func TestAsUint64BitPattern(t *testing.T) {
	neg := MakeInt(Int8, -1)
	bits, ok := neg.AsUint64()
	if !ok || bits != ^uint64(0) {
		t.Errorf("-1 bit pattern = %#x, ok=%v", bits, ok)
	}

	u := MakeUint(Uint16, 0b11)
	if bits, ok := u.AsUint64(); !ok || bits != 3 {
		t.Errorf("uint16(3) bit pattern = %#x, ok=%v", bits, ok)
	}

	raw := MakeUntypedNumeric("0x10")
	if bits, ok := raw.AsUint64(); !ok || bits != 16 {
		t.Errorf("untyped 0x10 = %#x, ok=%v", bits, ok)
	}

	if _, ok := MakeString("x").AsUint64(); ok {
		t.Error("strings have no canonical bit pattern")
	}
}

func TestMaxFor(t *testing.T) {
	cases := []struct {
		kind Kind
		want string
	}{
		{Uint8, "255"},
		{Int8, "127"},
		{Uint32, "4294967295"},
		{Int64, "9223372036854775807"},
	}
	for _, c := range cases {
		v, ok := MaxFor(c.kind)
		if !ok || v.Format() != c.want {
			t.Errorf("MaxFor(%v) = %q, ok=%v, want %q", c.kind, v.Format(), ok, c.want)
		}
	}
	if _, ok := MaxFor(Float32); ok {
		t.Error("MaxFor is integer-only")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	if got := MakeString("hello world").Format(); got != "hello world" {
		t.Errorf("string format = %q", got)
	}
	if got := MakeBool(false).Format(); got != "false" {
		t.Errorf("bool format = %q", got)
	}
	if got := MakeUint(Uint8, 255).Format(); got != "255" {
		t.Errorf("uint format = %q", got)
	}
}
