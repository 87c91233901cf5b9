package ports

// IDGenerator mints typed, prefixed unique identifiers for every entity
// kind in the system.
type IDGenerator interface {
	GenerateConversationID() string
	GenerateIntentID() string
	GeneratePlanID() string
	GenerateVerificationID() string
	GenerateSemanticEntryID() string
	GenerateEpisodicEntryID() string
	GeneratePreferenceID() string
	GenerateMemoryMetadataID() string
	GenerateUserProfileID() string
	GenerateSessionContextID() string
	GenerateManifestID() string
	GeneratePermissionID() string
	GenerateExecutionLogID() string
	GenerateVolumeID() string
	GenerateDiscoveryRequestID() string
	GenerateToolStateID() string
	GenerateResponseID() string
}
