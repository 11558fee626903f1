// Package prompt builds the chat conversation sent to the completion
// endpoint and extracts the rewritten file content from the reply.
package prompt

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged entry in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the ordered message sequence for one completion request.
type Conversation []Message

// systemContract pins the output format: reasoning and file content each in
// their own tag pair, nothing outside them. Models drift on formatting
// without the worked example below, so both are fixed strings.
const systemContract = `You are an expert code transformation assistant. Your task is to carefully refactor code based on the user's instruction and return only the modified file contents enclosed within <CHANGED_FILE_CONTENTS> tags. Additionally, provide your reasoning inside <REASONING> tags. Do not include any other text outside these tags.`

const exampleRequest = `<INSTRUCTION>
Replace all variable names that start with "old_" to start with "new_".
</INSTRUCTION>

<FILECONTENTS>
let old_value = 10;
let old_name = "example";
let other_var = 5;
</FILECONTENTS>`

const exampleReply = `<REASONING>
The instruction is to change all variable names that start with "old_" to "new_". This is a straightforward text transformation, so the variables old_value and old_name will be renamed to new_value and new_name, respectively. Variables that don't start with "old_" remain unchanged.
</REASONING>

<CHANGED_FILE_CONTENTS>
let new_value = 10;
let new_name = "example";
let other_var = 5;
</CHANGED_FILE_CONTENTS>`

// Build assembles the four-message few-shot conversation for one attempt:
// the system contract, the fixed worked example exchange, and the real
// instruction plus current file content. The example messages are
// byte-identical on every call.
func Build(instruction, fileContent string) Conversation {
	return Conversation{
		{Role: RoleSystem, Content: systemContract},
		{Role: RoleUser, Content: exampleRequest},
		{Role: RoleAssistant, Content: exampleReply},
		{Role: RoleUser, Content: "<INSTRUCTION>\n" + instruction + "\n</INSTRUCTION>\n\n<FILECONTENTS>\n" + fileContent + "\n</FILECONTENTS>"},
	}
}
