package question

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, doc string) RawQuestion {
	t.Helper()
	var raw RawQuestion
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return raw
}

func mustNormalize(t *testing.T, doc string) Question {
	t.Helper()
	q, err := Normalize(decode(t, doc))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return q
}

func TestNormalize_OptionShapes(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		wantSource OptionSource
		wantTexts  []string
		wantIDs    []string
		wantIndex  int
	}{
		{
			name:       "string list with numeric answer",
			doc:        `{"id":"1","question":"Q?","options":["a","b","c","d"],"answer":2}`,
			wantSource: OptionsList,
			wantTexts:  []string{"a", "b", "c", "d"},
			wantIDs:    []string{"option1", "option2", "option3", "option4"},
			wantIndex:  2,
		},
		{
			name:       "object list with id answer",
			doc:        `{"id":"2","question":"Q?","options":[{"id":"x","text":"a"},{"id":"y","value":"b"},{"id":"z","option":"c"},{"id":"w","text":"d"}],"answer":"z"}`,
			wantSource: OptionsList,
			wantTexts:  []string{"a", "b", "c", "d"},
			wantIDs:    []string{"x", "y", "z", "w"},
			wantIndex:  2,
		},
		{
			name:       "numbered fields",
			doc:        `{"id":"3","question":"Q?","option1":"a","option2":"b","option3":"c","option4":"d","answer":"option4"}`,
			wantSource: OptionsNumbered,
			wantTexts:  []string{"a", "b", "c", "d"},
			wantIDs:    []string{"option1", "option2", "option3", "option4"},
			wantIndex:  3,
		},
		{
			name:       "lettered fields with correctAnswer alias",
			doc:        `{"id":"4","text":"Q?","A":"a","B":"b","C":"c","D":"d","correctAnswer":"B"}`,
			wantSource: OptionsLettered,
			wantTexts:  []string{"a", "b", "c", "d"},
			wantIDs:    []string{"A", "B", "C", "D"},
			wantIndex:  1,
		},
		{
			name:       "numeric option values",
			doc:        `{"id":"5","question":"Q?","options":[10,20,30,40],"answer":0}`,
			wantSource: OptionsList,
			wantTexts:  []string{"10", "20", "30", "40"},
			wantIDs:    []string{"option1", "option2", "option3", "option4"},
			wantIndex:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := decode(t, tt.doc)
			if raw.OptionSource != tt.wantSource {
				t.Errorf("OptionSource = %v, want %v", raw.OptionSource, tt.wantSource)
			}
			q, err := Normalize(raw)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if !q.Valid() {
				t.Errorf("question not valid: %+v", q)
			}
			for i, o := range q.Options {
				if o.Text != tt.wantTexts[i] {
					t.Errorf("option %d text = %q, want %q", i, o.Text, tt.wantTexts[i])
				}
				if o.ID != tt.wantIDs[i] {
					t.Errorf("option %d id = %q, want %q", i, o.ID, tt.wantIDs[i])
				}
			}
			if q.CorrectIndex != tt.wantIndex {
				t.Errorf("CorrectIndex = %d, want %d", q.CorrectIndex, tt.wantIndex)
			}
		})
	}
}

func TestNormalize_PadsShortOptionList(t *testing.T) {
	q := mustNormalize(t, `{"id":"1","question":"Q?","options":["yes","no"],"answer":1}`)

	if len(q.Options) != OptionCount {
		t.Fatalf("len(Options) = %d, want %d", len(q.Options), OptionCount)
	}
	if q.Options[2].Text != "Option 3" || q.Options[3].Text != "Option 4" {
		t.Errorf("padding = %q, %q, want Option 3, Option 4", q.Options[2].Text, q.Options[3].Text)
	}
	if q.Options[2].Origin != OriginPadded {
		t.Errorf("Origin = %q, want %q", q.Options[2].Origin, OriginPadded)
	}
	if !q.StructurallyValid() {
		t.Error("padded question should be structurally valid")
	}
}

func TestNormalize_TruncatesLongOptionList(t *testing.T) {
	q := mustNormalize(t, `{"id":"1","question":"Q?","options":["a","b","c","d","e","f"],"answer":3}`)

	if len(q.Options) != OptionCount {
		t.Fatalf("len(Options) = %d, want %d", len(q.Options), OptionCount)
	}
	if q.Options[3].Text != "d" {
		t.Errorf("last option = %q, want d", q.Options[3].Text)
	}
}

func TestNormalize_FilledOptionIsNotStructurallyValid(t *testing.T) {
	q := mustNormalize(t, `{"id":"1","question":"Q?","options":[{"id":"a","text":"x"},{"id":"b"}],"answer":"a"}`)

	if q.Options[1].Text != "Option 2" {
		t.Errorf("filled text = %q, want Option 2", q.Options[1].Text)
	}
	if q.Options[1].Origin != OriginFilled {
		t.Errorf("Origin = %q, want %q", q.Options[1].Origin, OriginFilled)
	}
	if q.StructurallyValid() {
		t.Error("question with a filled option should not be structurally valid")
	}
}

func TestNormalize_AnswerResolutionOrder(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want int
	}{
		{"numeric wins over answerIndex", `{"question":"Q?","options":["a","b","c","d"],"answer":1,"answerIndex":3}`, 1},
		{"out of range numeric falls back", `{"question":"Q?","options":["a","b","c","d"],"answer":7,"answerIndex":3}`, 3},
		{"unknown id falls back", `{"question":"Q?","options":["a","b","c","d"],"answer":"nope","answerIndex":0}`, 0},
		{"answerIndex only", `{"question":"Q?","options":["a","b","c","d"],"answerIndex":2}`, 2},
		{"id cannot match padding", `{"question":"Q?","options":["a"],"answer":"option3","answerIndex":0}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mustNormalize(t, tt.doc)
			if q.CorrectIndex != tt.want {
				t.Errorf("CorrectIndex = %d, want %d", q.CorrectIndex, tt.want)
			}
		})
	}
}

func TestNormalize_Rejections(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want Reason
	}{
		{"no text", `{"id":"1","options":["a","b","c","d"],"answer":0}`, ReasonMissingText},
		{"blank text", `{"id":"1","question":"   ","options":["a"],"answer":0}`, ReasonMissingText},
		{"no answer", `{"id":"1","question":"Q?","options":["a","b","c","d"]}`, ReasonAmbiguousAnswer},
		{"negative answer", `{"id":"1","question":"Q?","options":["a","b","c","d"],"answer":-1}`, ReasonAmbiguousAnswer},
		{"fractional answer", `{"id":"1","question":"Q?","options":["a","b","c","d"],"answer":1.5}`, ReasonAmbiguousAnswer},
		{"explanation prose", `{"id":"1","question":"Option A is incorrect because of GST.","options":["a"],"answer":0}`, ReasonExplanatoryText},
		{"numbered statement", `{"id":"1","question":"12. The auditor must sign the report","options":["a"],"answer":0}`, ReasonExplanatoryText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(decode(t, tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !HasReason(err, tt.want) {
				t.Errorf("err = %v, want reason %q", err, tt.want)
			}
		})
	}
}

func TestLooksLikeExplanation(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Which of the following is a capital receipt?", false},
		{"Explanation: depreciation is a non-cash charge", true},
		{"SOLUTION: 42", true},
		{"This is correct since the lease is operating", true},
		{"3. The entity shall disclose contingent liabilities", true},
		{"3. Which entity shall disclose contingent liabilities?", false},
		{"3. lowercase statement", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := LooksLikeExplanation(tt.text); got != tt.want {
			t.Errorf("LooksLikeExplanation(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestNormalizePool_DropsAndSorts(t *testing.T) {
	var raws []RawQuestion
	doc := `[
		{"id":"10","question":"Ten?","options":["a","b"],"answer":0},
		{"id":"2","question":"Two?","options":["a","b"],"answer":1},
		{"id":"b","question":"Bee?","options":["a","b"],"answer":0},
		{"id":"a","question":"Ay?","options":["a","b"],"answer":0},
		{"id":"7","question":"","options":["a","b"],"answer":0},
		{"id":"8","question":"Eight?","options":["a","b"]}
	]`
	if err := json.Unmarshal([]byte(doc), &raws); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	pool, drops := NormalizePool("module1", "Module 1", raws)

	wantOrder := []string{"2", "10", "a", "b"}
	if pool.Len() != len(wantOrder) {
		t.Fatalf("Len = %d, want %d", pool.Len(), len(wantOrder))
	}
	for i, id := range wantOrder {
		if pool.Questions[i].ID != id {
			t.Errorf("Questions[%d].ID = %q, want %q", i, pool.Questions[i].ID, id)
		}
	}

	if len(drops) != 2 {
		t.Fatalf("len(drops) = %d, want 2", len(drops))
	}
	if drops[0].Index != 4 || drops[0].Reason != ReasonMissingText {
		t.Errorf("drops[0] = %+v, want index 4 missing text", drops[0])
	}
	if drops[1].Index != 5 || drops[1].Reason != ReasonAmbiguousAnswer {
		t.Errorf("drops[1] = %+v, want index 5 ambiguous answer", drops[1])
	}
}

func TestNormalizePool_NonFiniteIDsSortAsText(t *testing.T) {
	var raws []RawQuestion
	doc := `[
		{"id":"NaN","question":"Nan?","options":["a"],"answer":0},
		{"id":"3","question":"Three?","options":["a"],"answer":0},
		{"id":"Inf","question":"Inf?","options":["a"],"answer":0},
		{"id":"1","question":"One?","options":["a"],"answer":0},
		{"id":"-inf","question":"Minus inf?","options":["a"],"answer":0}
	]`
	if err := json.Unmarshal([]byte(doc), &raws); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	pool, _ := NormalizePool("module1", "Module 1", raws)

	wantOrder := []string{"1", "3", "-inf", "Inf", "NaN"}
	for i, id := range wantOrder {
		if pool.Questions[i].ID != id {
			t.Errorf("Questions[%d].ID = %q, want %q", i, pool.Questions[i].ID, id)
		}
	}
}

func TestNormalizePool_SynthesizesMissingIDs(t *testing.T) {
	var raws []RawQuestion
	doc := `[{"question":"One?","options":["a"],"answer":0},{"question":"Two?","options":["a"],"answer":0}]`
	if err := json.Unmarshal([]byte(doc), &raws); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	pool, drops := NormalizePool("review", "Review", raws)
	if len(drops) != 0 {
		t.Fatalf("unexpected drops: %v", drops)
	}
	if pool.Questions[0].ID != "1" || pool.Questions[1].ID != "2" {
		t.Errorf("ids = %q, %q, want 1, 2", pool.Questions[0].ID, pool.Questions[1].ID)
	}
}

func TestPoolClone_IsIndependent(t *testing.T) {
	p := &Pool{Questions: []Question{{ID: "1"}, {ID: "2"}}}
	c := p.Clone()
	c[0], c[1] = c[1], c[0]
	if p.Questions[0].ID != "1" {
		t.Error("Clone shares backing array with the pool")
	}
}
