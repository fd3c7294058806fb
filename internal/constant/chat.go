package constant

const (
	ChatMessageRoleUser  = "user"
	ChatMessageRoleModel = "assistant"
)

const TopicDocumentIngested = "document.ingested"
