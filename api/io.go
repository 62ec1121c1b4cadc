package api

import (
    "bufio"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "unicode"
)

var errNullValue = errors.New("null is not an integer")

type ProcessFunc func(int) error

// ProcessJsonStream decodes integers from body, which holds either a single JSON array
// or a whitespace separated stream of JSON numbers. An empty body yields no values.
func ProcessJsonStream(body io.Reader, process ProcessFunc) error {
    reader := bufio.NewReader(body)

    // Peek at the first non-whitespace byte
    for {
        b, err := reader.Peek(1)
        if err == io.EOF {
            return nil
        }
        if err != nil {
            return fmt.Errorf("error reading first byte: %w", err)
        }
        if !unicode.IsSpace(rune(b[0])) {
            break
        }
        if _, err := reader.Discard(1); err != nil {
            return fmt.Errorf("error skipping whitespace: %w", err)
        }
    }

    first, _ := reader.Peek(1)
    switch first[0] {
    case '[':
        return processJsonArray(reader, process)
    default:
        return processJsonValues(reader, process)
    }
}

func processJsonArray(reader io.Reader, process ProcessFunc) error {
    decoder := json.NewDecoder(reader)

    tok, err := decoder.Token()
    if err != nil {
        return fmt.Errorf("error reading opening token: %w", err)
    }
    if delim, ok := tok.(json.Delim); !ok || delim != '[' {
        return fmt.Errorf("expected opening [")
    }

    for decoder.More() {
        var item *int
        if err := decoder.Decode(&item); err != nil {
            return fmt.Errorf("error decoding array item: %w", err)
        }
        if item == nil {
            return errNullValue
        }

        if err := process(*item); err != nil {
            return fmt.Errorf("error processing item: %w", err)
        }
    }

    tok, err = decoder.Token()
    if err != nil {
        return fmt.Errorf("error reading closing token: %w", err)
    }
    if delim, ok := tok.(json.Delim); !ok || delim != ']' {
        return fmt.Errorf("expected closing ]")
    }

    return nil
}

func processJsonValues(reader io.Reader, process ProcessFunc) error {
    decoder := json.NewDecoder(reader)

    for {
        var item *int
        if err := decoder.Decode(&item); err != nil {
            if err == io.EOF {
                break
            }
            return fmt.Errorf("error decoding JSON value: %w", err)
        }
        if item == nil {
            return errNullValue
        }

        if err := process(*item); err != nil {
            return fmt.Errorf("error processing item: %w", err)
        }
    }

    return nil
}
