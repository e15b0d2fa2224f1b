// Package savefile locates character records inside a save buffer by
// signature and patches their skill bitfields.
package savefile

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/RanceJen/roguelike-sg7/internal/game/allocator"
	"github.com/RanceJen/roguelike-sg7/internal/game/dice"
	"github.com/RanceJen/roguelike-sg7/internal/game/skill"
	"github.com/RanceJen/roguelike-sg7/internal/rules"
)

// DefaultStartOffset is where the search for character 1 begins.
const DefaultStartOffset = 0x20000

// Plausible and hard stat ranges.
const (
	normalStatMin = 20
	normalStatMax = 300
	clampStatMin  = 0
	clampStatMax  = 1000
)

// progressEvery is the number of processed characters between progress logs.
const progressEvery = 10

// Processor runs skill allocation over every character in a save buffer.
type Processor struct {
	params  rules.Params
	catalog *skill.Catalog
	alloc   *allocator.Allocator
	start   int
	logger  *zap.Logger
}

// NewProcessor creates a Processor. start is the offset where the search
// for character 1 begins.
//
// Precondition: params passes Validate; catalog, src and logger are non-nil.
func NewProcessor(params rules.Params, catalog *skill.Catalog, src dice.Source, start int, logger *zap.Logger) *Processor {
	return &Processor{
		params:  params,
		catalog: catalog,
		alloc:   allocator.New(params, catalog, src, logger),
		start:   start,
		logger:  logger,
	}
}

// Process scans input for characters 1..LastCharacterNumber, grants skills
// to each and returns the patched buffer with the run statistics.
//
// Postcondition: input is never modified; on error no buffer is returned;
// the returned buffer has the same length as input.
func (p *Processor) Process(input []byte) ([]byte, *Report, error) {
	rep := &Report{RunID: uuid.NewString(), InputDigest: digest(input)}
	log := p.logger.With(zap.String("run_id", rep.RunID))
	buf := bytes.Clone(input)

	var fieldLens [3]int
	for _, cat := range skill.Categories {
		fieldLens[cat] = skill.ByteLen(p.catalog.Skills(cat))
	}

	log.Info("searching for characters",
		zap.String("start", fmt.Sprintf("0x%X", p.start)),
		zap.Int("last_character", p.params.LastCharacterNumber),
		zap.Int("buffer_len", len(buf)),
	)

	cursor := p.start
	processed := 0
	for id := 1; id <= p.params.LastCharacterNumber; id++ {
		match, next, err := Locate(buf, id, cursor)
		if errors.Is(err, ErrCharacterNotFound) {
			rep.Warnings = append(rep.Warnings, Warning{
				Kind:        WarningGap,
				CharacterID: id,
				Offset:      cursor,
				Message:     fmt.Sprintf("not found within %d bytes of 0x%X", WindowLen, cursor),
			})
			log.Debug("character not found, skipping", zap.Int("character", id), zap.String("cursor", fmt.Sprintf("0x%X", cursor)))
			continue
		}
		if err != nil {
			log.Error("character search failed", zap.Int("character", id), zap.Error(err))
			return nil, nil, fmt.Errorf("scanning from 0x%X: %w", cursor, err)
		}
		cursor = next
		rep.TotalCharactersFound++

		res, err := p.processCharacter(buf, id, match, fieldLens, rep, log)
		if err != nil {
			log.Error("reading character fields failed", zap.Int("character", id), zap.Error(err))
			return nil, nil, err
		}
		rep.Characters = append(rep.Characters, res)
		if n := res.AddedCount(); n > 0 {
			rep.CharactersModified++
			rep.TotalSkillsAdded += n
		}

		processed++
		if id == 1 || processed%progressEvery == 0 {
			log.Info("processing characters", zap.Int("character", id), zap.Int("processed", processed))
		}
	}

	rep.OutputDigest = digest(buf)
	log.Info("processing complete",
		zap.Int("characters_found", rep.TotalCharactersFound),
		zap.Int("characters_modified", rep.CharactersModified),
		zap.Int("skills_added", rep.TotalSkillsAdded),
		zap.Int("warnings", len(rep.Warnings)),
	)
	return buf, rep, nil
}

func (p *Processor) processCharacter(buf []byte, id, offset int, fieldLens [3]int, rep *Report, log *zap.Logger) (CharacterResult, error) {
	log = log.With(zap.Int("character", id))

	rec, err := Resolve(buf, id, offset)
	if err != nil {
		return CharacterResult{}, err
	}
	s, i, err := rec.Stats(buf)
	if err != nil {
		return CharacterResult{}, err
	}
	res := CharacterResult{ID: id, Offset: offset, Strength: int(s), Intelligence: int(i)}
	log.Debug("character found",
		zap.String("offset", fmt.Sprintf("0x%X", offset)),
		zap.String("strength_offset", fmt.Sprintf("0x%X", rec.StrengthOffset)),
		zap.Int32("skip_count", rec.SkipCount),
		zap.Int32("strength", s),
		zap.Int32("intelligence", i),
	)

	if s == 0 && i == 0 {
		res.Empty = true
		log.Info("empty character slot skipped")
		return res, nil
	}

	if outside(res.Strength, normalStatMin, normalStatMax) || outside(res.Intelligence, normalStatMin, normalStatMax) {
		rep.Warnings = append(rep.Warnings, Warning{
			Kind:        WarningAbnormalStats,
			CharacterID: id,
			Offset:      offset,
			Message:     fmt.Sprintf("strength %d, intelligence %d outside %d-%d", s, i, normalStatMin, normalStatMax),
		})
		log.Warn("abnormal stats detected", zap.Int32("strength", s), zap.Int32("intelligence", i))
		if ce := log.Check(zap.DebugLevel, "record dump"); ce != nil {
			ce.Write(zap.String("dump", dump(buf, offset-16, offset+128)))
		}
	}
	if outside(res.Strength, clampStatMin, clampStatMax) || outside(res.Intelligence, clampStatMin, clampStatMax) {
		res.Strength = clamp(res.Strength, clampStatMin, clampStatMax)
		res.Intelligence = clamp(res.Intelligence, clampStatMin, clampStatMax)
		rep.Warnings = append(rep.Warnings, Warning{
			Kind:        WarningClampedStats,
			CharacterID: id,
			Offset:      offset,
			Message:     fmt.Sprintf("stats clamped to strength %d, intelligence %d", res.Strength, res.Intelligence),
		})
		log.Warn("stats out of range, clamped", zap.Int("strength", res.Strength), zap.Int("intelligence", res.Intelligence))
	}

	in := allocator.Input{CharacterID: id, Strength: res.Strength, Intelligence: res.Intelligence}
	for _, cat := range skill.Categories {
		if in.Fields[cat], err = rec.SkillBytes(buf, cat, fieldLens[cat]); err != nil {
			return CharacterResult{}, err
		}
	}

	out := p.alloc.Allocate(in)
	res.Added = out.Added
	if out.AddedCount() == 0 {
		return res, nil
	}

	for _, cat := range skill.Categories {
		if err := rec.CommitSkillBytes(buf, cat, out.Fields[cat]); err != nil {
			return CharacterResult{}, err
		}
	}
	if ce := log.Check(zap.DebugLevel, "skills added"); ce != nil {
		ce.Write(
			zap.Strings("marshal", names(out.Added[skill.Marshal])),
			zap.Strings("commander", names(out.Added[skill.Commander])),
			zap.Strings("personal", names(out.Added[skill.Personal])),
			zap.Float64("final_score", out.FinalScore),
			zap.Float64("budget", out.Budget),
		)
	}
	return res, nil
}

func outside(v, lo, hi int) bool {
	return v < lo || v > hi
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func names(defs []skill.Definition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = fmt.Sprintf("%s (id %d, value %d)", d.Name, d.ID, d.Value)
	}
	return out
}

func digest(b []byte) string {
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// dump renders buf[from:to] as a hex dump, clamped to the buffer bounds.
func dump(buf []byte, from, to int) string {
	from = max(from, 0)
	to = min(to, len(buf))
	if from >= to {
		return ""
	}
	return fmt.Sprintf("from 0x%X\n%s", from, hex.Dump(buf[from:to]))
}
