package filestore

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-teller/teller/internal/domain"
	"github.com/shopspring/decimal"
)

// Snapshot line format:
//
//	USER|<id>|<full name>|<email>|<hashed password>|<created at unix>
//	ACC|<user id>|<number>|<balance>|<created at unix>
//
// Each user line is followed by the lines of the accounts it owns.
// String fields are escaped so the separator and line breaks can never
// appear raw: backslash, '|', newline and carriage return are written as
// \\, \p, \n and \r.
const (
	fieldSep  = "|"
	userTag   = "USER"
	accTag    = "ACC"
	userParts = 6
	accParts  = 5
)

var fieldEscaper = strings.NewReplacer(`\`, `\\`, fieldSep, `\p`, "\n", `\n`, "\r", `\r`)

func escapeField(s string) string {
	return fieldEscaper.Replace(s)
}

func unescapeField(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}

	var sb strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			sb.WriteByte(s[i])
			continue
		}

		i++
		if i == len(s) {
			return "", fmt.Errorf("truncated escape in %q", s)
		}

		switch s[i] {
		case '\\':
			sb.WriteByte('\\')
		case 'p':
			sb.WriteString(fieldSep)
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		default:
			return "", fmt.Errorf("unknown escape %q in %q", s[i], s)
		}
	}

	return sb.String(), nil
}

func (s *Store) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}
	defer f.Close()

	var maxID int32

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		parts := strings.Split(line, fieldSep)

		switch {
		case parts[0] == userTag && len(parts) == userParts:
			u, err := decodeUser(parts)
			if err != nil {
				return fmt.Errorf("corrupt snapshot line %q: %w", line, err)
			}

			s.users[u.ID] = u

			if u.ID > maxID {
				maxID = u.ID
			}
		case parts[0] == accTag && len(parts) == accParts:
			a, err := decodeAccount(parts)
			if err != nil {
				return fmt.Errorf("corrupt snapshot line %q: %w", line, err)
			}

			s.accounts[a.Number] = a
		default:
			return fmt.Errorf("corrupt snapshot line %q", line)
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	if maxID > 0 {
		s.nextUserID = maxID + 1
	}

	return nil
}

// persist rewrites the whole snapshot. The new file is written next to the
// old one and moved into place so a crash mid-write cannot lose the previous
// committed state.
func (s *Store) persist() error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(s.encode()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return err
	}

	return os.Rename(tmp.Name(), s.path)
}

func (s *Store) encode() []byte {
	userIDs := make([]int32, 0, len(s.users))
	for id := range s.users {
		userIDs = append(userIDs, id)
	}

	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	numbers := make([]string, 0, len(s.accounts))
	for number := range s.accounts {
		numbers = append(numbers, number)
	}

	sort.Strings(numbers)

	var buf bytes.Buffer

	for _, id := range userIDs {
		u := s.users[id]

		fmt.Fprintf(&buf, "%s|%d|%s|%s|%s|%d\n",
			userTag, u.ID,
			escapeField(u.FullName), escapeField(u.Email), escapeField(u.HashedPassword),
			u.CreatedAt.Unix())

		for _, number := range numbers {
			a := s.accounts[number]
			if a.UserID != id {
				continue
			}

			fmt.Fprintf(&buf, "%s|%d|%s|%s|%d\n",
				accTag, a.UserID, escapeField(a.Number), a.Balance.String(), a.CreatedAt.Unix())
		}
	}

	return buf.Bytes()
}

func decodeUser(parts []string) (domain.User, error) {
	id, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		return domain.User{}, err
	}

	fullName, err := unescapeField(parts[2])
	if err != nil {
		return domain.User{}, err
	}

	email, err := unescapeField(parts[3])
	if err != nil {
		return domain.User{}, err
	}

	hashedPassword, err := unescapeField(parts[4])
	if err != nil {
		return domain.User{}, err
	}

	createdAt, err := strconv.ParseInt(parts[5], 10, 64)
	if err != nil {
		return domain.User{}, err
	}

	return domain.User{
		ID:             int32(id),
		FullName:       fullName,
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      time.Unix(createdAt, 0).UTC(),
	}, nil
}

func decodeAccount(parts []string) (domain.Account, error) {
	userID, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		return domain.Account{}, err
	}

	number, err := unescapeField(parts[2])
	if err != nil {
		return domain.Account{}, err
	}

	balance, err := decimal.NewFromString(parts[3])
	if err != nil {
		return domain.Account{}, err
	}

	if balance.IsNegative() {
		return domain.Account{}, fmt.Errorf("negative balance %s", parts[3])
	}

	createdAt, err := strconv.ParseInt(parts[4], 10, 64)
	if err != nil {
		return domain.Account{}, err
	}

	return domain.Account{
		Number:    number,
		UserID:    int32(userID),
		Balance:   balance,
		CreatedAt: time.Unix(createdAt, 0).UTC(),
	}, nil
}
