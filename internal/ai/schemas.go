package ai

import "google.golang.org/genai"

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func object(props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       props,
		Required:         required,
		PropertyOrdering: required,
	}
}

func array(items *genai.Schema, desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: items, Description: desc}
}

var recommendationSchema = object(map[string]*genai.Schema{
	"peerRecommendations": array(object(map[string]*genai.Schema{
		"userId": str("The ID of the recommended user."),
		"reason": str("A brief explanation for the recommendation."),
	}, "userId", "reason"), "List of recommended users to connect with."),
	"skillRecommendations": array(object(map[string]*genai.Schema{
		"skillName": str("The name of the recommended skill."),
		"reason":    str("A brief explanation for why this skill is recommended."),
	}, "skillName", "reason"), "List of recommended skills to learn."),
}, "peerRecommendations", "skillRecommendations")

var synergySchema = object(map[string]*genai.Schema{
	"discoveries": array(object(map[string]*genai.Schema{
		"userId": str(""),
		"reason": str(""),
	}, "userId", "reason"), ""),
}, "discoveries")

var roadmapSchema = object(map[string]*genai.Schema{
	"skill":    str(""),
	"overview": str(""),
	"steps": array(object(map[string]*genai.Schema{
		"step":        {Type: genai.TypeInteger},
		"title":       str(""),
		"description": str(""),
		"duration":    str(""),
		"topics":      array(str(""), ""),
		"resources": array(object(map[string]*genai.Schema{
			"title": str(""),
			"url":   str(""),
			"type":  str(""),
		}, "title", "url", "type"), ""),
	}, "step", "title", "description", "resources", "duration", "topics"), ""),
}, "skill", "overview", "steps")

var quizSchema = object(map[string]*genai.Schema{
	"questions": array(object(map[string]*genai.Schema{
		"question":     str(""),
		"options":      array(str(""), ""),
		"correctIndex": {Type: genai.TypeInteger},
	}, "question", "options", "correctIndex"), ""),
}, "questions")
