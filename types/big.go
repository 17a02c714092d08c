package types

import (
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// BigInt is a big.Int with JSON string representation and CBOR byte
// representation, so amounts survive both the HTTP API and the storage
// artifact encoding without precision loss.
type BigInt big.Int

// MathBigInt converts b to a standard *big.Int.
func (b *BigInt) MathBigInt() *big.Int {
	return (*big.Int)(b)
}

// SetBigInt sets b to the value of i and returns b.
func (b *BigInt) SetBigInt(i *big.Int) *BigInt {
	(*big.Int)(b).Set(i)
	return b
}

func (b *BigInt) String() string {
	return (*big.Int)(b).String()
}

// MarshalJSON implements json.Marshaler, encoding as a decimal string.
func (b *BigInt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler, accepting both a quoted
// decimal string and a bare JSON number.
func (b *BigInt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if _, ok := (*big.Int)(b).SetString(s, 10); !ok {
		return fmt.Errorf("cannot parse %q as a base 10 integer", s)
	}
	return nil
}

// MarshalCBOR implements cbor.Marshaler using the big-endian byte
// representation.
func (b *BigInt) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal((*big.Int)(b).Bytes())
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (b *BigInt) UnmarshalCBOR(data []byte) error {
	var buf []byte
	if err := cbor.Unmarshal(data, &buf); err != nil {
		return err
	}
	(*big.Int)(b).SetBytes(buf)
	return nil
}
