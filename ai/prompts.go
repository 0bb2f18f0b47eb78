package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SRIDEV20/AI-powered-interview-simulator/models"
)

// Generation settings per call. Evaluation runs cold so repeated answers
// score alike.
const (
	questionTemperature = 0.7
	questionMaxTokens   = 2000

	evaluationTemperature = 0.3
	evaluationMaxTokens   = 1000

	summaryTemperature = 0.4
	summaryMaxTokens   = 600

	recommendationTemperature = 0.4
	recommendationMaxTokens   = 800
)

const jsonOnly = "Return ONLY valid JSON. No markdown, no explanation."

var questionSystemPrompts = map[models.QuestionMix]string{
	models.QuestionMix(models.QuestionTechnical): `You are a senior technical interviewer with 10+ years of experience.
Generate technical interview questions that test real coding and system knowledge.
` + jsonOnly,
	models.QuestionMix(models.QuestionBehavioral): `You are an experienced HR interviewer and career coach.
Generate behavioral interview questions using the STAR method framework.
` + jsonOnly,
	models.QuestionMix(models.QuestionCoding): `You are a senior software engineer running a coding interview.
Generate coding questions that can be answered in prose or short code.
` + jsonOnly,
	models.QuestionMix(models.QuestionSystemDesign): `You are a principal engineer running a system design interview.
Generate system design questions about architecture, scaling and trade-offs.
` + jsonOnly,
	models.MixMixed: `You are a senior technical interviewer with 10+ years of experience.
Generate a mix of technical and behavioral interview questions.
` + jsonOnly,
}

func questionPrompt(req QuestionRequest) Prompt {
	system, ok := questionSystemPrompts[req.Mix]
	if !ok {
		system = questionSystemPrompts[models.MixMixed]
	}

	user := fmt.Sprintf(`Generate exactly %[1]d interview questions for:

Role       : %[2]s
Difficulty : %[3]s
Type       : %[4]s

Return a JSON array like this:
[
  {
    "question"       : "Your question here?",
    "type"           : "technical | behavioral | coding | system_design",
    "skill_category" : "the specific skill this question tests",
    "difficulty"     : "%[3]s",
    "expected_points": ["key point 1", "key point 2", "key point 3"]
  }
]

Rules:
- Generate EXACTLY %[1]d questions
- Each question must be specific to %[2]s
- expected_points must have 3-5 items
- Return ONLY the JSON array, nothing else`, req.Count, req.JobRole, req.Difficulty, req.Mix)

	return Prompt{
		System:          system,
		User:            user,
		Temperature:     questionTemperature,
		MaxOutputTokens: questionMaxTokens,
	}
}

func evaluationPrompt(req EvaluationRequest) Prompt {
	points := "none provided"
	if len(req.ExpectedPoints) > 0 {
		points = "- " + strings.Join(req.ExpectedPoints, "\n- ")
	}

	user := fmt.Sprintf(`Evaluate this interview answer:

Role       : %s
Difficulty : %s
Question   : %s
Expected key points:
%s

Answer:
%s

Score the answer from 0 to 100 weighing accuracy 40%%, coverage of the key points 30%%, clarity 20%% and depth 10%%.

Return ONLY this JSON:
{
  "score": <number 0-100>,
  "feedback": "overall feedback here",
  "strengths": ["strength 1", "strength 2"],
  "improvements": ["improvement 1", "improvement 2"],
  "keywords_mentioned": ["keyword1", "keyword2"]
}`, req.JobRole, req.Difficulty, req.Question, points, req.Answer)

	return Prompt{
		System: `You are an expert technical interviewer evaluating candidate answers.
Evaluate answers fairly and consistently.
` + jsonOnly,
		User:            user,
		Temperature:     evaluationTemperature,
		MaxOutputTokens: evaluationMaxTokens,
	}
}

func summaryPrompt(req SummaryRequest) (Prompt, error) {
	results, err := json.Marshal(req.Results)
	if err != nil {
		return Prompt{}, fmt.Errorf("failed to encode question results: %w", err)
	}

	user := fmt.Sprintf(`Review this interview performance:

Role            : %s
Difficulty      : %s
Overall Score   : %.2f/100
Question Results: %s

Return ONLY this JSON:
{
  "overall_summary" : "2-3 sentence summary of overall performance",
  "top_strengths"   : ["strength 1", "strength 2", "strength 3"],
  "top_improvements": ["improvement 1", "improvement 2", "improvement 3"]
}`, req.JobRole, req.Difficulty, req.OverallScore, results)

	return Prompt{
		System: `You are an expert career coach reviewing an interview performance.
Generate a concise summary with actionable feedback.
` + jsonOnly,
		User:            user,
		Temperature:     summaryTemperature,
		MaxOutputTokens: summaryMaxTokens,
	}, nil
}

func recommendationPrompt(req RecommendationRequest) (Prompt, error) {
	skills, err := json.Marshal(req.Skills)
	if err != nil {
		return Prompt{}, fmt.Errorf("failed to encode skill scores: %w", err)
	}

	user := fmt.Sprintf(`Analyze these skill gaps for a %s candidate:

Skills: %s

Return ONLY this JSON:
{
  "recommendations": {
    "<skill_name>": "specific 1-2 sentence actionable recommendation"
  }
}`, req.JobRole, skills)

	return Prompt{
		System: `You are an expert career coach.
Generate specific, actionable learning recommendations for each skill gap.
` + jsonOnly,
		User:            user,
		Temperature:     recommendationTemperature,
		MaxOutputTokens: recommendationMaxTokens,
	}, nil
}
