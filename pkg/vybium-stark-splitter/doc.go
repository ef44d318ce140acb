// Package vybiumstarksplitter turns a STARK proof into the sequence of calls
// an on-chain verifier with a bounded call size can process.
//
// A proof is verified in three kinds of calls: one initial call carrying the
// proof without its FRI layer witnesses, one step call per inner FRI layer,
// and a final call carrying the last FRI layer. The splitter replays the
// verifier's Fiat-Shamir transcript to derive the queries every step needs
// and folds the queries from one layer to the next.
//
// # Quick Start
//
//	proof, err := vybiumstarksplitter.ParseProof(data)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := vybiumstarksplitter.DefaultConfig().WithJobID("my_job")
//	calls, err := vybiumstarksplitter.GenerateCalls(proof, config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, call := range calls {
//		fmt.Println(call)
//	}
//
// # Driving the steps
//
// SplitProof exposes the step iterator for callers that submit calls as they
// are produced:
//
//	s, err := vybiumstarksplitter.SplitProof(proof, "")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for {
//		step, ok, err := s.Steps.Next()
//		if err != nil {
//			log.Fatal(err)
//		}
//		if !ok {
//			break
//		}
//		submit(step)
//	}
//	final, err := s.Steps.Final()
//
// Final fails with a sequencing error while steps remain, and may be called
// only once.
//
// # Errors
//
// Every error returned by this package is a *SplitError whose Code tells the
// category: ErrShape when the proof does not match its configuration or
// layout, ErrProtocol when a proof of work or fold fails, ErrSequencing when
// calls are requested out of order. None of them is recoverable by retrying
// with the same proof.
package vybiumstarksplitter
