package template

import (
	"github.com/spboyer/promptplus/internal/models"
)

const refineWithTemplate = `You are an expert prompt engineer. Apply the '{{.Strategy.Name}}' meta-prompt template to refine the following user prompt.

{{.Strategy.Description}}

Process the meta-prompt completely and return a JSON response with:
1. initial_prompt_evaluation: Analysis of the original prompt's strengths and weaknesses
2. refined_prompt: The enhanced version
3. explanation_of_refinements: What was improved and why

Meta-prompt template:
{{.Instruction}}

Remember to return your response in valid JSON format.`

const autoRefineTemplate = `You are an expert prompt engineer. Based on the analysis, the '{{.Strategy.Name}}' strategy is most suitable for this prompt because: {{.Reason}}.

Apply the following meta-prompt template to refine the user's prompt. Process it completely and return a JSON response with:
1. initial_prompt_evaluation: Analysis of the original prompt's strengths and weaknesses
2. refined_prompt: The enhanced version
3. explanation_of_refinements: What was improved and why

Meta-prompt template:
{{.Instruction}}

Remember to return your response in valid JSON format.`

const compareTemplate = `You are an expert prompt engineer. Compare the following refinement strategies for the given prompt:

Original prompt: {{.Input}}
{{range .Strategies}}
**Strategy: {{.Name}}**
Description: {{.Description}}
Approach: Apply this template and evaluate effectiveness
{{end}}
Analyze each strategy and return a JSON response with:
1. comparisons: Object with each strategy's strengths, weaknesses, and suitability score (0-100)
2. recommendation: The best strategy key
3. reasoning: Why this strategy is best for this specific prompt
4. sample_refinement: A brief example of how the recommended strategy would enhance the prompt

Return your response in valid JSON format.`

const prepareTemplate = `STEP 1 COMPLETE: Metaprompt preparation for prompt refinement.

**Analysis Results:**
- Selected Strategy: {{.Strategy.Name}}
- Reason: {{.Reason}}
- Alternative: {{.AlternativeName}}

**Instructions for Next Step:**
Execute the following metaprompt and return the results to the ` + "`execute_refinement`" + ` prompt:

---
{{.Instruction}}
---

**Expected Output:** Process this metaprompt completely and provide your detailed analysis and refined prompt. Then call the ` + "`execute_refinement`" + ` prompt with your results to get the final refined prompt.

**Original Prompt (for reference):** {{.Input}}`

const executeTemplate = `STEP 2: Final refinement processing.

**Task:** Extract the refined prompt from the metaprompt execution results and format it as the final output.

**Original Prompt:** {{.Input}}

**Metaprompt Execution Results:**
{{.Results}}

**Your Task:**
1. Analyze the metaprompt execution results above
2. Extract the key improvements and refined prompt
3. Return a clean, final refined prompt that incorporates all the enhancements
4. Provide a brief summary of the key improvements made

**Format your response as:**
` + "```" + `
REFINED PROMPT:
[The final, polished prompt ready for use]

IMPROVEMENTS SUMMARY:
[Brief summary of key enhancements made]
` + "```"

const routerTemplate = `You are an AI Prompt Selection Assistant. Your task is to analyze the user's query and recommend the most appropriate metaprompt from the following list based on the nature of the request. Provide your response in a structured JSON format.

**Metaprompt List:**
{{range $i, $s := .Strategies}}
{{inc $i}}. **{{$s.Key}}**
- **Name**: {{$s.Name}}
- **Description**: {{$s.Description}}
- **Sample**: {{samples $s.Examples 2}}
{{end}}
For this given user query:
{{.Input}}

Analyze the query and provide your recommendation in the following JSON format enclosed in <json> tags:

<json>
{
"user_query": "The original query from the user",
"recommended_metaprompt": {
    "key": "Key of the recommended metaprompt",
    "name": "Name of the recommended metaprompt",
    "description": "Brief description of the metaprompt's purpose",
    "explanation": "Detailed explanation of why this metaprompt is the best fit for this specific query",
    "similar_sample": "If available, a sample use case from the list that's most similar to the user's query",
    "customized_sample": "A new sample specifically tailored to the user's query using this metaprompt approach"
},
"alternative_recommendation": {
    "key": "Key of the second-best metaprompt option",
    "name": "Name of the second-best metaprompt option",
    "explanation": "Brief explanation of why this could be an alternative choice"
}
}
</json>`

// RefineWithPrompt is the message for applying one chosen strategy.
func RefineWithPrompt(st models.Strategy, input string) (string, error) {
	return Execute("refine_with", refineWithTemplate, map[string]any{
		"Strategy":    st,
		"Instruction": Fill(st.Template, input),
	})
}

// AutoRefinePrompt is the message for applying an auto-selected strategy.
func AutoRefinePrompt(st models.Strategy, sel models.SelectionResult) (string, error) {
	return Execute("auto_refine", autoRefineTemplate, map[string]any{
		"Strategy":    st,
		"Reason":      sel.Reason,
		"Instruction": Fill(st.Template, sel.Input),
	})
}

// ComparePrompt asks a model to compare strategies for input.
func ComparePrompt(input string, strategies []models.Strategy) (string, error) {
	return Execute("compare_refinements", compareTemplate, map[string]any{
		"Input":      input,
		"Strategies": strategies,
	})
}

// PreparePrompt is step one of the two-step refinement flow.
func PreparePrompt(st models.Strategy, sel models.SelectionResult) (string, error) {
	return Execute("prepare_refinement", prepareTemplate, map[string]any{
		"Strategy":        st,
		"Reason":          sel.Reason,
		"AlternativeName": sel.AlternativeName,
		"Input":           sel.Input,
		"Instruction":     Fill(st.Template, sel.Input),
	})
}

// ExecutePrompt is step two: it turns a model's metaprompt output into a
// final refined prompt.
func ExecutePrompt(results, original string) (string, error) {
	return Execute("execute_refinement", executeTemplate, map[string]any{
		"Results": results,
		"Input":   original,
	})
}

// RouterPrompt asks a model to pick a strategy from the whole catalog.
func RouterPrompt(input string, strategies []models.Strategy) (string, error) {
	return Execute("router", routerTemplate, map[string]any{
		"Input":      input,
		"Strategies": strategies,
	})
}
