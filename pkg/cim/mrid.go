package cim

import (
	"strings"

	"github.com/google/uuid"
)

// mRID prefixes, one per object kind.
const (
	PrefixRemoteUnit    = "rtu"
	PrefixCentralUnit   = "rtac"
	PrefixPoint         = "pt"
	PrefixRemoteSource  = "rs"
	PrefixRemoteControl = "rc"

	modelSeed = "sc-model"
)

// DeterministicUUID derives a version 5 UUID from namespace and parts joined
// with "|". The same inputs always produce the same UUID.
func DeterministicUUID(namespace string, parts ...string) uuid.UUID {
	seed := namespace
	if len(parts) > 0 {
		seed += "|" + strings.Join(parts, "|")
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed))
}

// NewMRID returns an identifier of the form _<prefix>-<uuid>. The prefix is
// part of the seed, so different object kinds never collide.
func NewMRID(prefix string, parts ...string) string {
	return "_" + prefix + "-" + DeterministicUUID(prefix, parts...).String()
}

// ModelURN returns the profile model URN for a substation.
func ModelURN(substation string) string {
	return "urn:uuid:" + DeterministicUUID(modelSeed, substation).String()
}
