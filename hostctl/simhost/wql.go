package simhost

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// 支持的查询子集：
//   SELECT * FROM Class [WHERE Prop = literal [AND ...]]
//   ASSOCIATORS OF {path} [WHERE [AssocClass = A] [ResultClass = R]]
//   REFERENCES OF {path} [WHERE [ResultClass = A]]

type queryKind int

const (
	querySelect queryKind = iota
	queryAssociators
	queryReferences
)

type condition struct {
	prop    string
	negate  bool
	literal string
	quoted  bool
}

type query struct {
	kind        queryKind
	class       string
	conds       []condition
	object      string
	assocClass  string
	resultClass string
}

var (
	selectRe = regexp.MustCompile(`(?is)^SELECT\s+\*\s+FROM\s+(\w+)(?:\s+WHERE\s+(.+))?$`)
	assocRe  = regexp.MustCompile(`(?is)^(ASSOCIATORS|REFERENCES)\s+OF\s+\{(.+)\}(?:\s+WHERE\s+(.+))?$`)
)

func parseQuery(s string) (*query, error) {
	s = strings.TrimSpace(s)
	if m := selectRe.FindStringSubmatch(s); m != nil {
		q := &query{kind: querySelect, class: m[1]}
		if m[2] != "" {
			conds, err := parseConditions(m[2])
			if err != nil {
				return nil, err
			}
			q.conds = conds
		}
		return q, nil
	}
	if m := assocRe.FindStringSubmatch(s); m != nil {
		q := &query{kind: queryAssociators, object: strings.TrimSpace(m[2])}
		if strings.EqualFold(m[1], "REFERENCES") {
			q.kind = queryReferences
		}
		if m[3] != "" {
			toks := tokenize(m[3])
			if len(toks)%3 != 0 {
				return nil, fmt.Errorf("无效的关联查询条件: %s", m[3])
			}
			for i := 0; i+2 < len(toks); i += 3 {
				if toks[i+1].text != "=" {
					return nil, fmt.Errorf("无效的关联查询条件: %s", m[3])
				}
				switch strings.ToLower(toks[i].text) {
				case "assocclass":
					q.assocClass = toks[i+2].text
				case "resultclass":
					q.resultClass = toks[i+2].text
				default:
					return nil, fmt.Errorf("不支持的关联查询限定: %s", toks[i].text)
				}
			}
		}
		return q, nil
	}
	return nil, fmt.Errorf("不支持的查询: %s", s)
}

type token struct {
	text   string
	quoted bool
}

func tokenize(s string) []token {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '\'' || c == '"':
			var b strings.Builder
			j := i + 1
			for j < len(s) {
				if s[j] == c {
					if j+1 < len(s) && s[j+1] == c {
						b.WriteByte(c)
						j += 2
						continue
					}
					break
				}
				b.WriteByte(s[j])
				j++
			}
			toks = append(toks, token{text: b.String(), quoted: true})
			i = j + 1
		case c == '=':
			toks = append(toks, token{text: "="})
			i++
		case c == '!' || c == '<':
			if i+1 < len(s) && (s[i+1] == '=' || s[i+1] == '>') {
				toks = append(toks, token{text: "!="})
				i += 2
			} else {
				toks = append(toks, token{text: string(c)})
				i++
			}
		default:
			j := i
			for j < len(s) && !strings.ContainsRune(" \t\r\n='\"!<", rune(s[j])) {
				j++
			}
			toks = append(toks, token{text: s[i:j]})
			i = j
		}
	}
	return toks
}

func parseConditions(s string) ([]condition, error) {
	toks := tokenize(s)
	var conds []condition
	for i := 0; i < len(toks); {
		if i+2 >= len(toks) {
			return nil, fmt.Errorf("无效的查询条件: %s", s)
		}
		op := toks[i+1].text
		if op != "=" && op != "!=" {
			return nil, fmt.Errorf("不支持的比较运算: %s", op)
		}
		conds = append(conds, condition{
			prop:    toks[i].text,
			negate:  op == "!=",
			literal: toks[i+2].text,
			quoted:  toks[i+2].quoted,
		})
		i += 3
		if i < len(toks) {
			if !strings.EqualFold(toks[i].text, "AND") || toks[i].quoted {
				return nil, fmt.Errorf("只支持AND连接的条件: %s", s)
			}
			i++
		}
	}
	return conds, nil
}

func (c condition) match(props map[string]interface{}) bool {
	v, ok := props[c.prop]
	if !ok {
		for k, pv := range props {
			if strings.EqualFold(k, c.prop) {
				v, ok = pv, true
				break
			}
		}
	}
	eq := ok && c.equal(v)
	return eq != c.negate
}

func (c condition) equal(v interface{}) bool {
	if !c.quoted {
		switch strings.ToUpper(c.literal) {
		case "TRUE", "FALSE":
			b, isBool := v.(bool)
			return isBool && b == strings.EqualFold(c.literal, "TRUE")
		case "NULL":
			return v == nil
		}
		if n, err := strconv.ParseFloat(c.literal, 64); err == nil {
			f, err := strconv.ParseFloat(fmt.Sprint(v), 64)
			return err == nil && f == n
		}
	}
	switch t := v.(type) {
	case string:
		return strings.EqualFold(t, c.literal)
	case []string:
		for _, s := range t {
			if strings.EqualFold(s, c.literal) {
				return true
			}
		}
		return false
	case []interface{}:
		for _, i := range t {
			if strings.EqualFold(fmt.Sprint(i), c.literal) {
				return true
			}
		}
		return false
	}
	return strings.EqualFold(fmt.Sprint(v), c.literal)
}
