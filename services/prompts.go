package services

import "strings"

// brandContext is always injected so answers stay framed around the company.
const brandContext = `=== DARUKA.EARTH COMPANY CONTEXT ===
Darukaa.Earth is an AI-powered dMRV (Monitoring, Reporting, Verification) platform for biodiversity and carbon monitoring.

Key Capabilities:
- AI-powered species identification using bioacoustics
- Satellite, drone, and IoT data integration
- Real-time biodiversity and carbon credit monitoring
- Community-driven data collection and benefit sharing

Revenue Model: SaaS platform, Revenue sharing on credits, Consulting services, Data licensing

Key Achievements:
- India's first biodiversity credit project in Sundarbans
- 300+ local data stewards empowered
- Selected for AirMiners, Brainforest, Google AI accelerators
- 1000+ hours of bioacoustic data processed

Target Customers: Project Developers, Investors, Corporates with ESG goals, Governments, NGOs, Local Communities
=== END COMPANY CONTEXT ===`

// answerSystemPrompt is the persona for grounded question answering.
const answerSystemPrompt = `You are an AI assistant representing Darukaa.Earth, an AI-powered dMRV platform for biodiversity and carbon monitoring.

IMPORTANT RULES:
1. ALWAYS frame responses from Daruka.Earth's perspective
2. Position Darukaa.Earth as the solution provider
3. Be CONSISTENT with your previous answers in this conversation
4. Reference Daruka's capabilities when relevant
5. If discussing grants/projects, explain how Daruka can help

Guidelines:
1. Answer based on the provided context and conversation history
2. Connect answers to Daruka.Earth's offerings when applicable
3. Be professional, knowledgeable, and solution-oriented
4. Cite sources when possible
5. Do not invent information. If you don't know the answer, say so.

Tone: Professional, environmentally conscious, solution-focused, helpful.`

// projectGenSystemPrompt constrains hypothetical project generation to JSON.
const projectGenSystemPrompt = `You are a conservation project designer. Output only valid JSON.`

// darukaCapabilities grounds generated project proposals in what the platform
// can actually do.
const darukaCapabilities = `Daruka.Earth Core Capabilities:
1. AI-Powered Biodiversity Monitoring - Species identification using bioacoustics and computer vision
2. Multimodal Data Integration - Satellite, drone, IoT sensors, and field data fusion
3. Real-Time MRV (Monitoring, Reporting, Verification) - Digital MRV for carbon and biodiversity credits
4. Community-Driven Data Collection - Mobile tools for local communities as data stewards
5. Carbon Credit Generation - Measurable carbon sequestration tracking
6. Biodiversity Credit Assessment - Ecosystem health and species abundance metrics
7. Climate Risk Modeling - Predictive analytics using ML and climate data

Technology Stack:
- Bioacoustic AI models (custom trained for regional species)
- Satellite imagery analysis (land cover, vegetation indices)
- IoT sensor networks (AudioMoth recorders, environmental sensors)
- Cloud analytics platform for real-time processing

Proven Track Record:
- India's first biodiversity credit project in Sundarbans
- 300+ local data stewards empowered
- 1000+ hours of bioacoustic data processed
- Partnerships with Cornell Lab of Ornithology, IISER Tirupati`

// buildAnswerPrompt assembles the user prompt for a grounded answer.
func buildAnswerPrompt(context, question, history string) string {
	var sb strings.Builder
	sb.WriteString(brandContext)
	sb.WriteString("\n")
	if history != "" {
		sb.WriteString(history)
		sb.WriteString("\n")
	}
	sb.WriteString("Retrieved Context:\n")
	sb.WriteString(context)
	sb.WriteString("\n\nCurrent Question: ")
	sb.WriteString(question)
	sb.WriteString(`

Instructions:
1. Answer using the retrieved context AND conversation history
2. Be CONSISTENT with any previous answers in this conversation
3. Frame your response from Daruka.Earth's perspective
4. If this relates to a previous question, build upon that context
5. Be specific and cite sources when available

Response:`)
	return sb.String()
}

// buildPitchPrompt assembles the user prompt for a grant pitch, adding the
// matched or generated project as framing.
func buildPitchPrompt(context, question, history, projectBlock string) string {
	var sb strings.Builder
	sb.WriteString(brandContext)
	sb.WriteString("\n")
	if history != "" {
		sb.WriteString(history)
		sb.WriteString("\n")
	}
	sb.WriteString("Proposed Project:\n")
	sb.WriteString(projectBlock)
	sb.WriteString("\n\nRetrieved Context:\n")
	sb.WriteString(context)
	sb.WriteString("\n\nGrant Focus: ")
	sb.WriteString(question)
	sb.WriteString(`

Instructions:
1. Write a concise pitch explaining how Daruka.Earth addresses this grant's focus
2. Center the pitch on the proposed project above
3. Ground every claim in the retrieved context and Daruka's capabilities
4. Be specific about methodology and measurable outcomes
5. Keep a professional, grant-application tone

Response:`)
	return sb.String()
}

// buildProjectGenPrompt asks the LLM for a hypothetical project proposal as
// pure JSON.
func buildProjectGenPrompt(grantFocus, requirements, grantContext string) string {
	var sb strings.Builder
	sb.WriteString("You are helping Daruka.Earth create a project proposal for a conservation grant.\n\n")
	sb.WriteString("GRANT FOCUS: " + grantFocus + "\n\n")
	sb.WriteString("GRANT REQUIREMENTS:\n" + requirements + "\n\n")
	if grantContext != "" {
		sb.WriteString("ADDITIONAL CONTEXT:\n" + grantContext + "\n\n")
	}
	sb.WriteString("DARUKA.EARTH CAPABILITIES:\n" + darukaCapabilities + "\n\n")
	sb.WriteString(`Generate a realistic, achievable project proposal that:
1. Directly addresses the grant's focus area
2. Uses Daruka's actual technology capabilities (bioacoustics, satellite, AI, community involvement)
3. Has measurable outcomes
4. Is achievable within 1-2 years
5. Includes locations relevant to the grant (if in India, suggest specific regions)

Output as JSON (no markdown, just pure JSON):
{
    "project_name": "Creative but professional project name",
    "focus_areas": ["area1", "area2"],
    "target_species": ["species1", "species2"],
    "location": "Specific location in India or region",
    "description": "2-3 sentence project description",
    "methodology": "Brief methodology using Daruka's capabilities",
    "expected_outcomes": ["outcome1", "outcome2", "outcome3"]
}`)
	return sb.String()
}
