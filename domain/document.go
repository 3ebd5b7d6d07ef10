package domain

// PageImage is one rendered document page ready to be sent to the LLM.
type PageImage struct {
	MIMEType string
	Data     []byte
}

// LLMRequest is the prompt and ordered page images of one analysis call.
type LLMRequest struct {
	Prompt string
	Images []PageImage
}
