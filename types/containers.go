package types

// Checkpoint identifies a block at a specific voting slot. Two checkpoints
// over the same block but different ChkpSlot are distinct values.
type Checkpoint struct {
	BlockHash Hash
	ChkpSlot  Slot
	BlockSlot Slot
}

// Vote is a validator's observed chain view: the block it considers head,
// and the FFG source/target link it is casting a vote for.
type Vote struct {
	Slot      Slot
	HeadHash  Hash
	FFGSource Checkpoint
	FFGTarget Checkpoint
}

// SignedVote wraps a Vote with its authentication and sender identity.
type SignedVote struct {
	Message   Vote
	Signature Signature
	Sender    NodeIdentity
}

// BlockBody is the opaque application payload a block carries. The core
// never interprets it; construction is delegated to the GetBlockBody
// collaborator method (see consensus.Collaborators).
type BlockBody []byte

// Block is a consensus block: a parent link, a slot, an opaque body, and
// the set of votes the proposer chose to embed.
type Block struct {
	ParentHash Hash
	Slot       Slot
	Body       BlockBody
	Votes      []SignedVote
}

// ProposeMessage bundles a new block with the proposer's view of valid
// votes not already embedded in the block's chain.
type ProposeMessage struct {
	Block        Block
	ProposerView []SignedVote
}

// SignedPropose is a ProposeMessage plus its proposer signature.
type SignedPropose struct {
	Message   ProposeMessage
	Signature Signature
}

// ValidatorBalances maps a validator identity to its positive-integer
// voting weight for a particular (block, slot) pair.
type ValidatorBalances map[NodeIdentity]uint64

// TotalWeight sums the weight of every validator in the set.
func (vb ValidatorBalances) TotalWeight() uint64 {
	var total uint64
	for _, w := range vb {
		total += w
	}
	return total
}

// WeightOf sums the weight of the given identities, ignoring any identity
// not present in the balances (per validator_set_weight's intersection
// semantics).
func (vb ValidatorBalances) WeightOf(ids map[NodeIdentity]struct{}) uint64 {
	var total uint64
	for id := range ids {
		if w, ok := vb[id]; ok {
			total += w
		}
	}
	return total
}

// Configuration holds the immutable protocol parameters for a run.
type Configuration struct {
	// Delta is the network-delay bound; a slot lasts 4*Delta ticks.
	Delta Slot
	// Eta bounds vote lifetime in slots.
	Eta Slot
	// K is the confirmation depth for the available-chain rule.
	K uint64
	// Genesis is the anchor block; every complete chain ends here.
	Genesis Block
}

// SlotLength returns the number of ticks in one slot (4*Delta).
func (c Configuration) SlotLength() Slot { return 4 * c.Delta }
