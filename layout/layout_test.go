package layout_test

import (
	"strings"
	"testing"

	"github.com/featurebasedb/seerprep/errors"
	"github.com/featurebasedb/seerprep/layout"
	"github.com/featurebasedb/seerprep/logger"
	"github.com/google/go-cmp/cmp"
)

var tiny = layout.Schema{RecordLength: 5}

func TestParse(t *testing.T) {
	src := `
filename seer 'RESPIR.TXT';
data in;
  infile seer lrecl=362;
  input
    @ 1   PUBCSNUM  $char3.   /* Patient ID */
    @ 4   REG       $char2.   /* SEER registry */
;
`
	l, err := layout.Parse(strings.NewReader(src), tiny, nil)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	exp := []layout.Field{
		{Start: 0, Width: 3, Name: "PUBCSNUM", Description: "Patient ID"},
		{Start: 3, Width: 2, Name: "REG", Description: "SEER registry"},
	}
	if diff := cmp.Diff(exp, l.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if l.TotalWidth() != 5 {
		t.Fatalf("total width = %d", l.TotalWidth())
	}
}

func TestParse_DecimalWidthToken(t *testing.T) {
	src := "@ 1 3.0 x y Age at diagnosis */\n@ 4 2.1 x y Tumor grade\n"
	l, err := layout.Parse(strings.NewReader(src), tiny, nil)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	fields := l.Fields()
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Width != 3 || fields[0].Description != "Age at diagnosis" || fields[0].Name != "" {
		t.Errorf("unexpected first field %+v", fields[0])
	}
	if fields[1].Width != 2 || fields[1].Decimals != 1 || fields[1].Start != 3 || fields[1].Description != "Tumor grade" {
		t.Errorf("unexpected second field %+v", fields[1])
	}
}

func TestParse_IgnoresNonFieldLines(t *testing.T) {
	src := strings.Join([]string{
		"@ 1 A $char3.",                 // too few tokens
		"# 1 A $char3. /* not */ marker", // wrong marker
		"@ 1 A $char3. /* A */",
		"   ",
		"@ 4 B $char2. /* B */",
	}, "\n")
	l, err := layout.Parse(strings.NewReader(src), tiny, nil)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	if l.Len() != 2 {
		t.Fatalf("expected 2 fields, got %d", l.Len())
	}
}

func TestParse_SkipsMalformedFieldLines(t *testing.T) {
	src := strings.Join([]string{
		"@ x A $char3. /* bad start */ here",
		"@ 1 A $char /* no width */ here",
		"@ 1 A $char0. /* zero width */ here",
		"@ 1 A $char3. /* A */",
		"@ 4 B $char2. /* B */",
	}, "\n")
	log := logger.NewBufferLogger()
	l, err := layout.Parse(strings.NewReader(src), tiny, log)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	if l.Len() != 2 {
		t.Fatalf("expected 2 fields, got %d", l.Len())
	}
	if got := strings.Count(log.String(), "ignoring layout line"); got != 3 {
		t.Fatalf("expected 3 warnings, got %d:\n%s", got, log.String())
	}
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]struct {
		src    string
		schema layout.Schema
	}{
		"checksum": {
			src:    "@ 1 A $char3. /* A */\n",
			schema: tiny,
		},
		"too wide": {
			src:    "@ 1 A $char19. /* A */\n",
			schema: layout.Schema{RecordLength: 19},
		},
		"no width": {
			src:    "@ 1 A $char /* A */ x\n",
			schema: tiny,
		},
		"seer gap": {
			src:    "@ 1 A $char5. /* A */\n",
			schema: layout.SEERResearch,
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := layout.Parse(strings.NewReader(test.src), test.schema, nil)
			if !errors.Is(err, errors.ErrSpecFormat) {
				t.Fatalf("expected SpecFormat error, got %v", err)
			}
		})
	}
}

func TestSEERResearch(t *testing.T) {
	if got := layout.SEERResearch.DeclaredWidth(); got != 309 {
		t.Fatalf("declared width = %d, want 309", got)
	}
}
