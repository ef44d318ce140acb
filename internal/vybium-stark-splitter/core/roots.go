package core

import (
	"fmt"
	"math/big"

	lru "github.com/hashicorp/golang-lru/v2"
)

// rootsOfUnity is shared by every split in the process
var rootsOfUnity = mustRootCache(TwoAdicity + 1)

func mustRootCache(size int) *lru.Cache[uint32, Felt] {
	c, err := lru.New[uint32, Felt](size)
	if err != nil {
		panic(err)
	}
	return c
}

// RootOfUnity returns the primitive 2^logN-th root of unity 3^((p-1)/2^logN)
func RootOfUnity(logN uint32) (Felt, error) {
	if logN > TwoAdicity {
		return Zero, fmt.Errorf("no root of unity of order 2^%d (two-adicity is %d)", logN, TwoAdicity)
	}
	if root, ok := rootsOfUnity.Get(logN); ok {
		return root, nil
	}

	exponent := new(big.Int).Sub(Modulus(), big.NewInt(1))
	exponent.Rsh(exponent, uint(logN))
	root := FieldGenerator.Exp(exponent)

	rootsOfUnity.Add(logN, root)
	return root, nil
}
