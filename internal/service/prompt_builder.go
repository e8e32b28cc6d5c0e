package service

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/watchledger/backend/internal/model"
)

// buildReferenceMessages reference 用途：系统提示词 + 型号信息，没有风格指南
func buildReferenceMessages(prompts *PromptSet, brand, referenceName string) []*schema.Message {
	var b strings.Builder
	b.WriteString("Write a description for the following watch reference.\n\n")
	writeField(&b, "Brand", brand)
	writeField(&b, "Reference", referenceName)

	return []*schema.Message{
		schema.SystemMessage(prompts.SystemPrompt),
		schema.UserMessage(strings.TrimRight(b.String(), "\n")),
	}
}

// buildWatchMessages watch 用途：系统提示词、风格指南、手表属性和型号描述
func buildWatchMessages(prompts *PromptSet, attrs model.WatchAttributes, referenceDescription string) []*schema.Message {
	var b strings.Builder
	b.WriteString("Write a listing description for the following watch.\n\n")
	writeField(&b, "Brand", attrs.Brand)
	writeField(&b, "Model", attrs.ModelName)
	writeField(&b, "Model reference", attrs.ModelReference)
	writeField(&b, "Case material", attrs.CaseMaterial)
	if attrs.Year != nil {
		writeField(&b, "Year", fmt.Sprintf("%d", *attrs.Year))
	}
	writeField(&b, "Movement", attrs.Movement)
	writeField(&b, "Listing reference", attrs.ListingReference)
	writeField(&b, "Condition", attrs.Condition)
	writeField(&b, "Additional information", attrs.AdditionalInformation)
	if strings.TrimSpace(referenceDescription) != "" {
		b.WriteString("\nReference description:\n")
		b.WriteString(strings.TrimSpace(referenceDescription))
	}

	return []*schema.Message{
		schema.SystemMessage(prompts.SystemPrompt),
		schema.SystemMessage(prompts.StyleGuide),
		schema.UserMessage(strings.TrimRight(b.String(), "\n")),
	}
}

func writeField(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}
