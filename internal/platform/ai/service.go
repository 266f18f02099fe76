package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/radassist/radassist/internal/platform/apperr"
	"github.com/rs/zerolog/log"
)

// Service implements Provider on top of a text/vision generator.
type Service struct {
	gen generator
}

func NewService(gen generator) *Service {
	return &Service{gen: gen}
}

func (s *Service) AnalyzeImage(ctx context.Context, image []byte, imageMIME, modality, patientContext string) (*ImageAnalysis, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image payload", apperr.ErrAnalysisFailed)
	}
	text, err := s.gen.Generate(ctx, genRequest{
		System:    systemInstruction,
		Prompt:    analyzeImagePrompt(modality, patientContext),
		Image:     image,
		ImageMIME: imageMIME,
	})
	if err != nil {
		return nil, err
	}
	out, err := parseImageAnalysis(text)
	if err != nil {
		log.Warn().Err(err).Str("modality", modality).Msg("unparseable analysis reply")
		return nil, err
	}
	return out, nil
}

func (s *Service) GenerateReportNarrative(ctx context.Context, patient PatientProfile, scan ScanContext, reportType string) (string, error) {
	text, err := s.gen.Generate(ctx, genRequest{
		System: systemInstruction,
		Prompt: reportNarrativePrompt(patient, scan, reportType),
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty report narrative", apperr.ErrAnalysisFailed)
	}
	return text, nil
}

// ChatReply answers a patient chat message. Off-topic messages get the fixed
// redirect without a provider round trip; provider failures surface as
// ErrAIService so callers can still persist the user's message.
func (s *Service) ChatReply(ctx context.Context, message string, history []ChatTurn, scan *ScanContext) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", apperr.ErrEmptyMessage
	}
	if !IsMedicalTopic(message) {
		return RedirectMessage, nil
	}
	var prompt string
	if scan != nil {
		prompt = chatWithScanPrompt(message, history, *scan)
	} else {
		prompt = chatPrompt(message, history)
	}
	text, err := s.gen.Generate(ctx, genRequest{System: systemInstruction, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrAIService, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty chat reply", apperr.ErrAIService)
	}
	return text, nil
}

func (s *Service) ClassifyDisease(ctx context.Context, symptoms, medicalHistory, scanFindings string) (*DiseaseClassification, error) {
	if strings.TrimSpace(symptoms) == "" {
		return nil, fmt.Errorf("%w: symptoms required", apperr.ErrValidation)
	}
	text, err := s.gen.Generate(ctx, genRequest{
		System: systemInstruction,
		Prompt: classifyDiseasePrompt(symptoms, medicalHistory, scanFindings),
	})
	if err != nil {
		return nil, err
	}
	return parseDiseaseClassification(text)
}

func (s *Service) SuggestMedicines(ctx context.Context, classification, symptoms string, patientAge int, scan *ScanContext) (*MedicineSuggestion, error) {
	text, err := s.gen.Generate(ctx, genRequest{
		System: systemInstruction,
		Prompt: suggestMedicinesPrompt(classification, symptoms, patientAge, scan),
	})
	if err != nil {
		return nil, err
	}
	return parseMedicineSuggestion(text)
}

func (s *Service) AssessRisk(ctx context.Context, findings []string, medicalHistory string) (*RiskAssessment, error) {
	text, err := s.gen.Generate(ctx, genRequest{
		System: systemInstruction,
		Prompt: assessRiskPrompt(findings, medicalHistory),
	})
	if err != nil {
		return nil, err
	}
	return parseRiskAssessment(text)
}
