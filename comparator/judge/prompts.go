/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"fmt"
	"maps"

	"chainguard.dev/llmcomparator/agents/promptbuilder"
)

// TemplateID selects one of the judge prompts.
type TemplateID int

const (
	// CoherenceTemplate asks whether the candidate addresses the question.
	// Fields: prompt, response_a, text_reference.
	CoherenceTemplate TemplateID = iota
	// RecursiveTemplate asks for per-claim verdicts against the reference.
	// Fields: prompt, response_a, response_b, full_text, model_reasoning.
	RecursiveTemplate
)

func (id TemplateID) String() string {
	switch id {
	case CoherenceTemplate:
		return "coherence"
	case RecursiveTemplate:
		return "recursive"
	default:
		return fmt.Sprintf("TemplateID(%d)", int(id))
	}
}

const resultFormat = "```xml\n<result>\n  <explanation>YOUR EXPLANATION HERE.</explanation>\n  <verdict>ONE OF THE VERDICTS HERE.</verdict>\n</result>\n```"

const multiResultFormat = "```xml\n<result>\n  <explanation>YOUR EXPLANATION FOR EACH VERDICT HERE.</explanation>\n  <verdict>THE SELECTED VERDICTS HERE.</verdict>\n</result>\n```"

var coherencePrompt = promptbuilder.MustNewPrompt(`### LLM Judge: coherence check

**Task:**
You are an LLM judge. Given a question (Q), an answer (A) and a reasoning (R),
decide whether A is coherent with Q, taking R into account.

---

**Evaluation procedure**

1. **Analyze the question (Q):**
   - Identify the main intent of Q.
   - Determine which specific information is requested.

2. **Examine the answer (A):**
   - Check whether A directly addresses the main intent of Q.
   - Check that A does not confuse related but distinct concepts.
   - Check whether A fits the context of Q.

3. **Examine the reasoning (R):**
   - Check whether R shows a correct understanding of Q.
   - Confirm that R does not introduce errors or confuse related concepts.
   - Make sure R adequately supports A.

4. **Final assessment:**
   - If A is coherent with Q and R confirms a correct understanding of Q, the verdict is ` + "`Coherent`" + `.
   - If A seems pertinent to Q but R shows a misunderstanding of Q, the verdict is ` + "`Wrong`" + `.
   - If A is not coherent with Q, regardless of R, the verdict is ` + "`Wrong`" + `.

---

**Rules**

1. A does not need to be correct to be coherent. It only needs to address the main intent of Q
   without confusing related but distinct concepts.
2. R corroborates A. If R is incoherent or shows a misunderstanding of Q, even an apparently
   correct A is ` + "`Wrong`" + `.

---

**Output format**

Present your evaluation in the following XML format:

` + resultFormat + `

**Verdict options:**
- ` + "`Coherent`" + `: A is coherent with Q and R confirms a correct understanding of Q.
- ` + "`Wrong`" + `: A is not coherent with Q, or R shows a misunderstanding of Q.

---

**Examples**

Q: What was the name of the first Roman emperor?
A: Marcus Aurelius
R: The Roman emperor Marcus Aurelius is known as the philosopher.

` + "```xml\n<result>\n  <explanation>A is pertinent to Q and R shows the question was understood.</explanation>\n  <verdict>Coherent</verdict>\n</result>\n```" + `

Q: What was the name of the first Roman emperor?
A: Until fourth grade.
R: I taught history to Marcus until fourth grade.

` + "```xml\n<result>\n  <explanation>A is not coherent with Q.</explanation>\n  <verdict>Wrong</verdict>\n</result>\n```" + `

---

**Your task:**
Evaluate the following Q, A and R according to the rules above and answer in the XML format.

- **Q:** {{prompt}}
- **A:** {{response_a}}
- **R:** {{text_reference}}

Be objective and limit yourself to the information provided. Do not make further inferences.
`)

var recursivePrompt = promptbuilder.MustNewPrompt(`### LLM Judge: claim verdicts

**Input**
RT: {{full_text}}
Q: {{prompt}}
A: {{response_a}}
GTA: {{response_b}}
{{model_reasoning}}

**Task:**
You are an LLM judge. Evaluate an answer (A) to a question (Q) against a reference answer (GTA)
and the text (RT) the answer was drawn from. An answer may receive several verdicts, but each
part of it receives exactly one.

**Evaluation procedure**

- Step 1. Analyze the question Q: which specific information is requested.
- Step 2. Examine the answer A:
  - where possible, split A into parts A'
  - check whether each part A' answers Q
  - check whether A or a part A' matches the meaning of GTA
  - check whether A leaves out information contained in GTA
- Step 3. Analyze the reference text RT:
  - check whether A or a part A' introduces information not present in RT
  - identify whether RT contains explicit or implicit information supporting A'
  - if implicit, decide whether the premises in RT are valid and imply A'
- Step 4. Apply the rules below and assign the verdicts.

**Rules** (A' is a part of A; each part receives a single label)

1. A' and GTA match in meaning, possibly worded differently: ` + "`Correct`" + `.
2. A' and GTA differ: ` + "`Wrong`" + `.
3. A gives an incomplete answer, leaving out parts of GTA: ` + "`Incomplete`" + `.
4. A' adds information beyond GTA that can be validly inferred from RT: ` + "`Inference`" + `.
5. A' adds information with no explicit or inferable support in RT: ` + "`Hallucination`" + `.

If the premises in RT do not validly imply A', the part is ` + "`Wrong`" + `, not ` + "`Inference`" + `.

**Verdict options:**
['Correct', 'Wrong', 'Incomplete', 'Inference', 'Hallucination']
Separate multiple verdicts with commas.

**Output format:**

Analysis:
YOUR STEP BY STEP ANALYSIS HERE

` + multiResultFormat + `

---

**Examples**

Q: What was the applicant's job?
A: Cook
GTA: cook
RT: Mario has worked as a cook at the social cooperative for 5 years.

` + "```xml\n<result>\n  <explanation>A and GTA have the same meaning.</explanation>\n  <verdict>Correct</verdict>\n</result>\n```" + `

Q: Which languages does the applicant speak?
A: French, German
GTA: French
RT: The applicant is a native French speaker and often spends holidays in Germany.

` + "```xml\n<result>\n  <explanation>French is Correct; German is an invalid inference from holidays in Germany, so Wrong.</explanation>\n  <verdict>Correct, Wrong</verdict>\n</result>\n```" + `

Q: Which languages does the applicant speak?
A: French, Spanish
GTA: French, Italian
RT: The applicant is a native French speaker and lives in Germany.

` + "```xml\n<result>\n  <explanation>French is Correct, Spanish has no support in RT so Hallucination, Italian is missing so Incomplete.</explanation>\n  <verdict>Correct, Hallucination, Incomplete</verdict>\n</result>\n```" + `
`)

func defaultTemplate(id TemplateID) (*promptbuilder.Prompt, error) {
	switch id {
	case CoherenceTemplate:
		return coherencePrompt, nil
	case RecursiveTemplate:
		return recursivePrompt, nil
	default:
		return nil, fmt.Errorf("unknown template %v", id)
	}
}

// Render fills the built-in template id with fields. Keys the template does
// not use are ignored; a missing key is an error, except model_reasoning,
// which renders empty.
func Render(id TemplateID, fields map[string]string) (string, error) {
	p, err := defaultTemplate(id)
	if err != nil {
		return "", err
	}
	return render(p, fields)
}

func render(p *promptbuilder.Prompt, fields map[string]string) (string, error) {
	if p.Has("model_reasoning") {
		if _, ok := fields["model_reasoning"]; !ok {
			withDefault := make(map[string]string, len(fields)+1)
			maps.Copy(withDefault, fields)
			withDefault["model_reasoning"] = ""
			fields = withDefault
		}
	}
	return p.Render(fields)
}

// template returns the configured prompt for id, falling back to the built-in one.
func (c Config) template(id TemplateID) (*promptbuilder.Prompt, error) {
	switch {
	case id == CoherenceTemplate && c.Templates.Coherence != nil:
		return c.Templates.Coherence, nil
	case id == RecursiveTemplate && c.Templates.Recursive != nil:
		return c.Templates.Recursive, nil
	}
	return defaultTemplate(id)
}

// fields returns the template fields for item.
func fields(item ReplicatedInput) map[string]string {
	return map[string]string{
		"prompt":         item.Prompt,
		"response_a":     item.ResponseA,
		"response_b":     item.ResponseB,
		"full_text":      item.FullText,
		"text_reference": item.TextReference,
	}
}
