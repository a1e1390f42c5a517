package parser

// ParseSpawnerCreated parses [id, "x,y,z"].
func (p *Parser) ParseSpawnerCreated(data []string) (SpawnerCreated, error) {
	var out SpawnerCreated

	a, err := args(":SPAWNER:CREATED:", data, 2)
	if err != nil {
		return out, err
	}
	if out.ID, err = parseEntityID("spawner id", a[0]); err != nil {
		return out, err
	}
	if out.Position, err = parsePosition("spawner position", a[1]); err != nil {
		return out, err
	}
	return out, nil
}

// ParseEntityID parses a command whose only argument is an entity ID, such
// as :SPAWNER:DESTROYED:, :BOSS:REMOVED: or :REMAINING:.
func (p *Parser) ParseEntityID(command string, data []string) (uint32, error) {
	a, err := args(command, data, 1)
	if err != nil {
		return 0, err
	}
	return parseEntityID("id", a[0])
}
