package calldata

import (
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/core"
)

// Entrypoint names of the verifier contract
const (
	EntrypointVerifyProofInitial              = "verify_proof_initial"
	EntrypointVerifyProofStep                 = "verify_proof_step"
	EntrypointVerifyProofFinalAndRegisterFact = "verify_proof_final_and_register_fact"
)

// Entrypoint selectors, as raw Montgomery limbs most significant first
var (
	SelectorVerifyProofInitial = core.FeltFromRaw([4]uint64{
		454550947884470974,
		16477582295426715492,
		11685118883294889452,
		4530997181248663582,
	})

	SelectorVerifyProofStep = core.FeltFromRaw([4]uint64{
		366928098735624260,
		14431289083207541201,
		10380245210905814816,
		18299522247102387854,
	})

	SelectorVerifyProofFinalAndRegisterFact = core.FeltFromRaw([4]uint64{
		123220592339497,
		16622672023924009708,
		11528706201916495377,
		6934812503915115676,
	})
)

// SelectorFromName derives an entrypoint selector from its name
func SelectorFromName(name string) core.Felt {
	return core.StarknetKeccak([]byte(name))
}
