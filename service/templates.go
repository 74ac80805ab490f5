package service

import (
	"regexp"
	"strings"
)

// Supported document types. Each maps to its own analysis template; sections
// target roughly 200-400 words apiece.
const (
	DocTypeBusinessAnalysis = "Business Analysis"
	DocTypePitchDeck        = "Pitch Deck"
	DocTypeBusinessPlan     = "Business Plan"
	DocTypeMarketResearch   = "Market Research"
	DocTypeFinancialModel   = "Financial Model"
)

// PersonaPreamble frames every composed prompt. The model is instructed to
// ground its answer strictly in the retrieved context.
const PersonaPreamble = `You are a seasoned business analyst. Using ONLY the provided context, produce a concise, structured analysis with clear section headers and bullet points where helpful. If a section lacks evidence in the context, write "Not found" for that section. Do not invent facts.`

var analysisTemplates = map[string]string{
	DocTypeBusinessAnalysis: `Analyze this document and provide:
1. Overall Summary (2-3 sentences)
2. Company Vision and Overview (identify the type of business from the document, then propose a clear vision statement and a short overview)
3. Industry and Market Analysis (analyze the industry the business belongs to, its competitive positioning, market opportunities, and risks)
4. Feedback Analysis
4.1 Positive Points (3-4 most common)
4.2 Negative Points (3-4 most common)
4.3 Non-business Related (staff, cleanliness, behaviour, etc.)
4.4 Spam Reviews Check (identify if any reviews appear irrelevant or spam-like, summarize in 1-2 sentences)
5. Final Verdict (a thoughtful conclusion combining all the above insights with an intelligent recommendation or improvement direction)

Format in clear sections with bullet points where relevant.`,

	DocTypePitchDeck: `Analyze this pitch deck and provide QUANTIFIED insights:
1. Executive Summary (2-3 sentences with key metrics)
2. Value Proposition and Competitive Advantage (what makes this startup unique, how it stands out, quantified benefits)
3. Market Opportunity (market size as TAM, SAM, SOM, growth rate, target market segments with sizes)
4. Business Model and Revenue Projections (revenue streams with projected amounts, unit economics, break-even timeline)
5. Competitive Landscape and Differentiation (top competitors, competitive advantages with metrics, positioning strategy)
6. Financial Highlights and Projections (revenue projections over 3-5 years, growth rates, key financial metrics)
7. Team Strengths and Execution Capability
8. Investment Ask and Use of Funds
9. Risk Assessment and Mitigation
10. Growth Strategy and Scalability (expansion plans with timelines, scaling metrics and milestones)

Provide SPECIFIC NUMBERS, PERCENTAGES, and TIMELINES wherever possible.
Focus on how this startup will STAND OUT and SCALE.`,

	DocTypeBusinessPlan: `Analyze this business plan and provide QUANTIFIED insights:
1. Business Overview and Value Proposition (unique selling points with metrics, competitive advantages quantified)
2. Market Analysis and Opportunity (market size with specific numbers, growth rates and trends, target segments with sizes)
3. Product and Service Details (key features with quantified benefits, how it stands out from alternatives)
4. Revenue Model and Projections (revenue streams with amounts, pricing strategy and margins, 3-5 year projections)
5. Marketing Strategy and Acquisition (customer acquisition channels, CAC and conversion rates, growth tactics)
6. Operations Plan and Scalability (operational efficiency metrics, scaling bottlenecks and solutions)
7. Financial Projections and Metrics (revenue, costs, profitability, key ratios, cash flow projections)
8. Risk Analysis and Mitigation (top risks with probability, mitigation strategies)
9. Implementation Timeline and Milestones (key milestones with dates, success metrics for each phase)
10. Success Metrics and KPIs (measurable success indicators, tracking and optimization plans)

Provide SPECIFIC NUMBERS, PERCENTAGES, and TIMELINES.
Focus on EXECUTION and SCALABILITY.`,

	DocTypeMarketResearch: `Analyze this market research and provide QUANTIFIED insights:
1. Market Size and Growth Metrics (TAM, SAM, SOM with specific numbers, CAGR and growth drivers, regional breakdowns)
2. Key Trends and Opportunities (emerging trends with adoption rates, market gaps, timing for market entry)
3. Customer Segments and Behavior (segment sizes and characteristics, acquisition costs, lifetime value projections)
4. Competitor Landscape and Positioning (market share of top competitors, competitive advantages and weaknesses)
5. Market Drivers and Barriers (growth drivers with impact metrics, entry barriers and costs, regulatory requirements)
6. Opportunities and Threats (market opportunities with sizes, threat assessment, risk-reward analysis)
7. Regulatory and Compliance Factors (regulatory requirements and costs, compliance timeline and resources)
8. Future Predictions and Forecasts (market evolution predictions, technology adoption curves)
9. Entry Strategy and Timing (optimal entry timing, market entry costs and timeline, success probability factors)
10. Investment Opportunity Assessment (market attractiveness score, investment requirements, expected returns)

Provide SPECIFIC NUMBERS, PERCENTAGES, and TIMELINES.
Focus on ACTIONABLE INSIGHTS for startup success.`,

	DocTypeFinancialModel: `Analyze this financial document and provide QUANTIFIED insights:
1. Revenue Streams and Projections (revenue breakdown by stream, growth rates, seasonality and trends)
2. Cost Structure and Efficiency (fixed vs variable costs, optimization opportunities, scaling cost implications)
3. Unit Economics and Profitability (LTV, CAC, payback period, gross and net margins, unit economics by segment)
4. Growth Projections and Scalability (revenue growth rates, customer growth projections, scaling milestones)
5. Key Financial Metrics and KPIs (burn rate and runway, revenue per customer, acquisition efficiency)
6. Cash Flow Analysis and Management (cash flow projections, working capital requirements, cash strategies)
7. Funding Requirements and Strategy (funding needs with timeline, use of funds breakdown, funding milestones)
8. Break-even Analysis and Profitability (break-even timeline, profitability projections, profitability drivers)
9. Financial Risks and Mitigation (risk factors with probability, financial stress testing, mitigation strategies)
10. Investment Highlights and Returns (investment attractiveness, expected returns and timeline, exit strategy)

Provide SPECIFIC NUMBERS, PERCENTAGES, and TIMELINES.
Focus on FINANCIAL VIABILITY and INVESTMENT POTENTIAL.`,
}

// numberedHeading matches template headings like "1. ", "4.1 " or "10. ".
var numberedHeading = regexp.MustCompile(`^\d+(?:\.\d+)*\.?\s+`)

// DocumentTypes lists the supported types in display order.
func DocumentTypes() []string {
	return []string{
		DocTypeBusinessAnalysis,
		DocTypePitchDeck,
		DocTypeBusinessPlan,
		DocTypeMarketResearch,
		DocTypeFinancialModel,
	}
}

// TemplateFor returns the analysis template for the document type, falling
// back to the generic business analysis template for unknown types.
func TemplateFor(documentType string) string {
	if tpl, ok := analysisTemplates[documentType]; ok {
		return tpl
	}
	return analysisTemplates[DocTypeBusinessAnalysis]
}

// SectionQueries extracts one retrieval objective per numbered heading of a
// template. Parenthesized guidance is stripped so the query stays a short
// semantic description of the section.
func SectionQueries(template string) []string {
	var queries []string
	for _, line := range strings.Split(template, "\n") {
		line = strings.TrimSpace(line)
		if !numberedHeading.MatchString(line) {
			continue
		}
		clean := numberedHeading.ReplaceAllString(line, "")
		if idx := strings.Index(clean, "("); idx > 0 {
			clean = clean[:idx]
		}
		clean = strings.TrimSpace(clean)
		if clean != "" {
			queries = append(queries, clean)
		}
	}
	if len(queries) == 0 {
		queries = []string{
			"Overall Summary",
			"Company Vision and Overview",
			"Industry and Market Analysis",
			"Positive Points",
			"Negative Points",
			"Final Verdict",
		}
	}
	return queries
}
