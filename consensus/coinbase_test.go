package consensus

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func hexBytes(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

// coinbaseVector builds the real-chain coinbase transaction from
// https://learnmeabitcoin.com/explorer/block/0000000000000a0f82f8be9ec24ebfca3d5373fde8dc4d9b9a949d538e9ff679
// (retrieved via the reference implementation's own test fixture), either
// with its genuine 7-byte scriptSig or an oversized one.
func coinbaseVector(t *testing.T, validScript bool) *Tx {
	t.Helper()
	scriptSig := hexBytes(t, "03f0a2a4d9f0a2")
	if !validScript {
		scriptSig = bytes.Repeat([]byte{0x00}, 210)
	}
	out := Output{
		Value:  5_000_350_000,
		Script: hexBytes(t, "41047eda6bd04fb27cab6e7c28c99b94977f073e912f25d1ff7165d9c95cd9bbe6da7e7ad7f2acb09e0ced91705f7616af53bee51a238b7dc527f2be0aa60469d140ac"),
	}
	return &Tx{
		Version:  1,
		Locktime: 150_007,
		Inputs: []TxInput{
			{PrevOut: Outpoint{Txid: zeroTxid, Vout: 0}, ScriptSig: scriptSig, Sequence: 0xffffffff},
		},
		Outputs: []Output{out},
	}
}

func TestValidateCoinbaseValid(t *testing.T) {
	tx := coinbaseVector(t, true)
	if err := ValidateCoinbase(tx); err != nil {
		t.Fatalf("expected valid coinbase, got %v", err)
	}
}

func TestValidateCoinbaseOversizedScript(t *testing.T) {
	tx := coinbaseVector(t, false)
	err := ValidateCoinbase(tx)
	if err == nil {
		t.Fatal("expected error for oversized scriptSig")
	}
	ve, ok := err.(*ValidationError)
	if !ok || ve.Code != ErrInvalidCoinbase {
		t.Fatalf("expected ErrInvalidCoinbase, got %v", err)
	}
	if ve.Detail != "Invalid ScriptSig size" {
		t.Fatalf("detail = %q, want %q", ve.Detail, "Invalid ScriptSig size")
	}
}

func TestValidateCoinbaseScriptLenBoundaries(t *testing.T) {
	mk := func(n int) *Tx {
		tx := coinbaseVector(t, true)
		tx.Inputs[0].ScriptSig = bytes.Repeat([]byte{0x51}, n)
		return tx
	}
	cases := []struct {
		n       int
		wantErr bool
	}{
		{1, true},
		{2, false},
		{100, false},
		{101, true},
	}
	for _, c := range cases {
		err := ValidateCoinbase(mk(c.n))
		if (err != nil) != c.wantErr {
			t.Errorf("scriptSig len %d: err=%v, wantErr=%v", c.n, err, c.wantErr)
		}
	}
}

func TestValidateCoinbaseNotCoinbase(t *testing.T) {
	tx := coinbaseVector(t, true)
	tx.Inputs[0].PrevOut.Txid[0] = 0x01
	err := ValidateCoinbase(tx)
	ve, ok := err.(*ValidationError)
	if !ok || ve.Code != ErrInvalidCoinbase {
		t.Fatalf("expected ErrInvalidCoinbase, got %v", err)
	}
}

func TestCoinbaseOutputSum(t *testing.T) {
	tx := coinbaseVector(t, true)
	sum, err := CoinbaseOutputSum(tx)
	if err != nil {
		t.Fatal(err)
	}
	if sum != 5_000_350_000 {
		t.Fatalf("got %d, want 5000350000", sum)
	}
}
