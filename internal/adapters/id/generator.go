package id

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generator produces nanoid-based identifiers, one prefix per entity kind.
// A 21-character nanoid over the default 64-char alphabet carries about
// 125 bits of entropy.
type Generator struct{}

func New() *Generator {
	return &Generator{}
}

func (g *Generator) generate(prefix string) string {
	gid, err := gonanoid.New(21)
	if err != nil {
		return prefix + "_fallback"
	}
	return prefix + "_" + gid
}

func (g *Generator) GenerateConversationID() string     { return g.generate("ac") }
func (g *Generator) GenerateIntentID() string           { return g.generate("ai") }
func (g *Generator) GeneratePlanID() string             { return g.generate("apl") }
func (g *Generator) GenerateVerificationID() string     { return g.generate("avf") }
func (g *Generator) GenerateSemanticEntryID() string    { return g.generate("asem") }
func (g *Generator) GenerateEpisodicEntryID() string    { return g.generate("aep") }
func (g *Generator) GeneratePreferenceID() string       { return g.generate("apref") }
func (g *Generator) GenerateMemoryMetadataID() string   { return g.generate("amm") }
func (g *Generator) GenerateUserProfileID() string      { return g.generate("apr") }
func (g *Generator) GenerateSessionContextID() string   { return g.generate("asc") }
func (g *Generator) GenerateManifestID() string         { return g.generate("amf") }
func (g *Generator) GeneratePermissionID() string       { return g.generate("aperm") }
func (g *Generator) GenerateExecutionLogID() string     { return g.generate("axl") }
func (g *Generator) GenerateVolumeID() string           { return g.generate("avol") }
func (g *Generator) GenerateDiscoveryRequestID() string { return g.generate("adq") }
func (g *Generator) GenerateToolStateID() string        { return g.generate("ats") }
func (g *Generator) GenerateResponseID() string         { return g.generate("ares") }
