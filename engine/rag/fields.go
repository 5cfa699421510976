// Package rag answers questions and extracts structured fields from the
// vector store using retrieval-augmented LLM calls.
package rag

// Field is one field of interest for structured extraction. The
// description doubles as the retrieval query for that field.
type Field struct {
	Name        string
	Description string
}

// NewsItemFields are the fields of interest extracted from scraped news
// articles. Location drives the enrichment check downstream.
var NewsItemFields = []Field{
	{Name: "location", Description: "The specific place, district, state, or protected area where the events in the article happened."},
	{Name: "species", Description: "The wild animal or plant species the article is about."},
	{Name: "threats", Description: "Threats to wildlife described in the article, such as poaching, habitat loss, conflict, roadkill, or disease."},
	{Name: "conservation_actions", Description: "Conservation measures, interventions, or rescues described in the article."},
	{Name: "stakeholders", Description: "People, communities, agencies, or organizations involved in the events of the article."},
}

// ResearchArticleFields are the fields of interest extracted from scholarly
// papers.
var ResearchArticleFields = []Field{
	{Name: "location", Description: "The study area or geographic region where the research was conducted."},
	{Name: "species", Description: "The focal species or taxa studied in the paper."},
	{Name: "methods", Description: "The research methods, survey techniques, or analyses used in the study."},
	{Name: "key_findings", Description: "The main results or findings reported by the study."},
	{Name: "recommendations", Description: "Conservation or management recommendations made by the authors."},
}
