// Package crypto implements the node's concrete signing and verification
// collaborator on top of secp256k1, the curve already present in the
// teacher's dependency closure (pulled in transitively via go-ethereum).
package crypto

import (
	"crypto/sha256"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/ssflabs/gean/ssz"
	"github.com/ssflabs/gean/types"
)

// KeyPair is a single validator's signing key, along with the
// NodeIdentity derived from its public key.
type KeyPair struct {
	Identity types.NodeIdentity
	Priv     *secp256k1.PrivateKey
	Pub      *secp256k1.PublicKey
}

// GenerateKeyPair derives a KeyPair from raw private key bytes (32
// bytes). Callers are responsible for sourcing those bytes securely; this
// function performs no randomness itself.
func GenerateKeyPair(seed [32]byte) KeyPair {
	priv := secp256k1.PrivKeyFromBytes(seed[:])
	pub := priv.PubKey()
	return KeyPair{
		Identity: identityFromPubKey(pub),
		Priv:     priv,
		Pub:      pub,
	}
}

// identityFromPubKey derives a NodeIdentity deterministically from a
// compressed public key, so identities can be recomputed from the
// validator set alone without a separate registry.
func identityFromPubKey(pub *secp256k1.PublicKey) types.NodeIdentity {
	return types.NodeIdentity(ssz.Hash(pub.SerializeCompressed()))
}

// KeyStore implements the consensus.Collaborators signing and
// verification methods. It holds the local node's own signing key plus
// the public keys of every known validator, keyed by the NodeIdentity
// derived from identityFromPubKey.
type KeyStore struct {
	local   KeyPair
	pubKeys map[types.NodeIdentity]*secp256k1.PublicKey
}

// NewKeyStore builds a KeyStore for local, pre-registering its own
// public key alongside the given peer keys.
func NewKeyStore(local KeyPair, peers []*secp256k1.PublicKey) *KeyStore {
	ks := &KeyStore{local: local, pubKeys: make(map[types.NodeIdentity]*secp256k1.PublicKey)}
	ks.pubKeys[local.Identity] = local.Pub
	for _, pub := range peers {
		ks.pubKeys[identityFromPubKey(pub)] = pub
	}
	return ks
}

// Identity returns the local node's derived identity.
func (ks *KeyStore) Identity() types.NodeIdentity { return ks.local.Identity }

func voteDigest(msg types.Vote) [32]byte {
	return sha256.Sum256(ssz.EncodeSignedVote(types.SignedVote{Message: msg}))
}

func proposeDigest(msg types.ProposeMessage) [32]byte {
	return sha256.Sum256(ssz.EncodeSignedPropose(types.SignedPropose{Message: msg}))
}

// SignVote signs msg with id's registered key. id must be the local
// identity; signing on behalf of another identity is not supported. The
// signature is a 65-byte recoverable compact signature, the same width
// as types.Signature, so no truncation or padding is needed.
func (ks *KeyStore) SignVote(msg types.Vote, id types.NodeIdentity) types.Signature {
	if id != ks.local.Identity {
		return types.Signature{}
	}
	digest := voteDigest(msg)
	return packSignature(ecdsa.SignCompact(ks.local.Priv, digest[:], true))
}

// SignPropose signs msg with the local key when id is the local identity;
// for any other id it returns a zero signature.
func (ks *KeyStore) SignPropose(msg types.ProposeMessage, id types.NodeIdentity) types.Signature {
	if id != ks.local.Identity {
		return types.Signature{}
	}
	digest := proposeDigest(msg)
	return packSignature(ecdsa.SignCompact(ks.local.Priv, digest[:], true))
}

// VerifyVoteSignature reports whether sv.Signature authenticates
// sv.Message as signed by sv.Sender's registered public key.
func (ks *KeyStore) VerifyVoteSignature(sv types.SignedVote) bool {
	pub, ok := ks.pubKeys[sv.Sender]
	if !ok {
		return false
	}
	digest := voteDigest(sv.Message)
	return recoverAndCompare(sv.Signature, digest, pub)
}

// VerifyProposeSignature reports whether sp.Signature authenticates
// sp.Message as signed by proposer's registered public key. The core
// itself does not call this (no proposer-signature collaborator is part
// of the pure state machine per spec.md), and no other package in this
// module calls it either: received proposals reach the core without a
// proposer-signature check.
func (ks *KeyStore) VerifyProposeSignature(sp types.SignedPropose, proposer types.NodeIdentity) bool {
	pub, ok := ks.pubKeys[proposer]
	if !ok {
		return false
	}
	digest := proposeDigest(sp.Message)
	return recoverAndCompare(sp.Signature, digest, pub)
}

func packSignature(compact []byte) types.Signature {
	var out types.Signature
	copy(out[:], compact)
	return out
}

func recoverAndCompare(sig types.Signature, digest [32]byte, want *secp256k1.PublicKey) bool {
	pub, _, err := ecdsa.RecoverCompact(sig[:], digest[:])
	if err != nil {
		return false
	}
	return pub.IsEqual(want)
}
