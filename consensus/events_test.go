package consensus

import (
	"testing"

	"github.com/ssflabs/gean/types"
)

func TestOnReceivedProposeBuffersBlockAndMergesViewDuringPropose(t *testing.T) {
	validators := types.ValidatorBalances{testIdentity(1): 1, testIdentity(2): 1}
	s, col := newTestState(t, validators)
	genesisHash := col.BlockHash(s.Configuration.Genesis)
	s.CurrentPhase = types.PhasePropose

	vote := buildVote(testIdentity(2), 0, genesisHash,
		types.Checkpoint{BlockHash: genesisHash}, types.Checkpoint{BlockHash: genesisHash, ChkpSlot: 1})
	block := types.Block{ParentHash: genesisHash, Slot: 1}
	sp := types.SignedPropose{Message: types.ProposeMessage{Block: block, ProposerView: []types.SignedVote{vote}}}

	out := OnReceivedPropose(s, col, sp)

	blockHash := col.BlockHash(block)
	if _, ok := out.BufferBlocks[blockHash]; !ok {
		t.Fatalf("expected received block to be buffered")
	}
	if _, ok := out.ViewVotes[vote]; !ok {
		t.Fatalf("expected proposer view vote to be merged directly into ViewVotes during PROPOSE")
	}
}

func TestOnReceivedProposeLeavesViewVotesBufferedOutsidePropose(t *testing.T) {
	validators := types.ValidatorBalances{testIdentity(1): 1}
	s, col := newTestState(t, validators)
	genesisHash := col.BlockHash(s.Configuration.Genesis)
	s.CurrentPhase = types.PhaseVote

	vote := buildVote(testIdentity(1), 0, genesisHash,
		types.Checkpoint{BlockHash: genesisHash}, types.Checkpoint{BlockHash: genesisHash, ChkpSlot: 1})
	block := types.Block{ParentHash: genesisHash, Slot: 1}
	sp := types.SignedPropose{Message: types.ProposeMessage{Block: block, ProposerView: []types.SignedVote{vote}}}

	out := OnReceivedPropose(s, col, sp)

	if _, ok := out.ViewVotes[vote]; ok {
		t.Fatalf("expected proposer view votes to not be merged into ViewVotes outside PROPOSE phase")
	}
}

func TestOnBlockReceivedAndOnVoteReceivedBuffer(t *testing.T) {
	validators := types.ValidatorBalances{testIdentity(1): 1}
	s, col := newTestState(t, validators)
	genesisHash := col.BlockHash(s.Configuration.Genesis)

	b := types.Block{ParentHash: genesisHash, Slot: 1}
	out := OnBlockReceived(s, col, b)
	if _, ok := out.BufferBlocks[col.BlockHash(b)]; !ok {
		t.Fatalf("expected block to be buffered")
	}

	v := types.SignedVote{Message: types.Vote{Slot: 1}, Sender: testIdentity(1)}
	out2 := OnVoteReceived(s, v)
	if _, ok := out2.BufferVotes[v]; !ok {
		t.Fatalf("expected vote to be buffered")
	}
}

func TestAvailableChainReturnsGenesisInitially(t *testing.T) {
	validators := types.ValidatorBalances{testIdentity(1): 1}
	s, col := newTestState(t, validators)

	chain, ok := AvailableChain(s, col)
	if !ok {
		t.Fatalf("expected available chain to be complete at genesis")
	}
	if len(chain) != 1 {
		t.Fatalf("expected available chain to contain only genesis, got %d blocks", len(chain))
	}
}
