package constant

const (
	BlueprintSystemInstruction = `You are a personal development analyst producing one section of a structured development blueprint.

Rules:
1. Output MUST be a single valid JSON object and nothing else.
2. Use only the profile data and expanded context you are given.
3. Do not repeat keys that belong to other sections.
4. Be specific and actionable; avoid generic self-help filler.`

	// ContextExpansionPrompt asks the model to check whether the intake is
	// sufficient before any section is generated. An empty
	// "additional_information_required" array means generation can proceed.
	ContextExpansionPrompt = `Review the user profile below and decide whether it contains enough
information to produce a complete nine-section development blueprint.

User profile:
%s

Output MUST be valid JSON of the form:
{
  "expanded_context": "a short synthesis of the profile, goals and constraints",
  "additional_information_required": ["question 1", "question 2"]
}

If the profile is sufficient, "additional_information_required" MUST be an
empty array. Only ask for information that is genuinely blocking.`

	// SectionPrompt generates one section. The returned object's top-level
	// keys are merged into the cumulative blueprint document.
	SectionPrompt = `Generate section %d of 9, "%s", of the development blueprint.

User profile:
%s

Expanded context:
%s

Output MUST be valid JSON with exactly one top-level key "%s" whose value
is an object containing the section content (summary, detailed analysis,
and 3-5 concrete recommendations).`
)
